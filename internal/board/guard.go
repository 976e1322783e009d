package board

import "github.com/navidved/bulletin/internal/identity"

// CanMutate reports whether caller may edit or delete post: only its author can.
func CanMutate(post Post, caller identity.Caller) bool {
	return caller.Is(post.Author)
}
