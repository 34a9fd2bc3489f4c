package usecase

import (
	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// IsOwner reports whether identity owns book.
func IsOwner(book *model.Book, identity auth.Identity) bool {
	return book.OwnerID.Hex() == identity.UserID
}

// IsShareable reports whether book is offered to other users.
func IsShareable(book *model.Book) bool {
	return !book.Archived && book.Shareable
}
