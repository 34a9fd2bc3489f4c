package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// LendingUsecase drives the borrow, return and approval transitions of a book.
// Each method returns the id of the lending record it touched.
type LendingUsecase interface {
	Borrow(ctx context.Context, identity auth.Identity, bookID string) (string, error)
	Return(ctx context.Context, identity auth.Identity, bookID string) (string, error)
	ApproveReturn(ctx context.Context, identity auth.Identity, bookID string) (string, error)
}

const (
	reasonBorrowUnavailable  = "You cannot borrow this book. It is archived or not shareable"
	reasonBorrowOwnBook      = "You cannot borrow this book if you are the owner of the book"
	reasonAlreadyBorrowed    = "The requested book is already borrowed"
	reasonReturnUnavailable  = "You cannot return this book. It is archived or not shareable"
	reasonReturnOwnBook      = "You cannot return this book if you are the owner of the book"
	reasonNotBorrowed        = "You did not borrow this book"
	reasonApproveUnavailable = "The requested book is archived or not shareable"
	reasonApproveNotOwner    = "You cannot approve the return of a book you do not own"
	reasonNotReturned        = "The book is not returned yet. You cannot approve its return"
)

type lendingUsecase struct {
	bookRepo    repository.BookRepository
	lendingRepo repository.LendingRecordRepository
}

func NewLendingUsecase(
	bookRepo repository.BookRepository,
	lendingRepo repository.LendingRecordRepository,
) LendingUsecase {
	return &lendingUsecase{
		bookRepo:    bookRepo,
		lendingRepo: lendingRepo,
	}
}

func (u *lendingUsecase) Borrow(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	book, borrowerID, err := u.load(ctx, identity, bookID)
	if err != nil {
		return "", err
	}

	if !IsShareable(book) {
		return "", notPermitted(reasonBorrowUnavailable)
	}
	if IsOwner(book, identity) {
		return "", notPermitted(reasonBorrowOwnBook)
	}

	borrowed, err := u.lendingRepo.ExistsUnreturned(ctx, book.ID, borrowerID)
	if err != nil {
		return "", err
	}
	if borrowed {
		return "", notPermitted(reasonAlreadyBorrowed)
	}

	record, err := u.lendingRepo.CreateRecord(ctx, &model.LendingRecord{
		BookID:      book.ID,
		BookOwnerID: book.OwnerID,
		BorrowerID:  borrowerID,
	})
	if err != nil {
		// A concurrent borrow won the race on the open-record index.
		if mongo.IsDuplicateKeyError(err) {
			return "", notPermitted(reasonAlreadyBorrowed)
		}

		return "", err
	}

	return record.ID.Hex(), nil
}

func (u *lendingUsecase) Return(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	book, borrowerID, err := u.load(ctx, identity, bookID)
	if err != nil {
		return "", err
	}

	if !IsShareable(book) {
		return "", notPermitted(reasonReturnUnavailable)
	}
	if IsOwner(book, identity) {
		return "", notPermitted(reasonReturnOwnBook)
	}

	record, err := u.lendingRepo.MarkReturned(ctx, book.ID, borrowerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", notPermitted(reasonNotBorrowed)
		}

		return "", err
	}

	return record.ID.Hex(), nil
}

func (u *lendingUsecase) ApproveReturn(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	book, ownerID, err := u.load(ctx, identity, bookID)
	if err != nil {
		return "", err
	}

	if !IsShareable(book) {
		return "", notPermitted(reasonApproveUnavailable)
	}
	if !IsOwner(book, identity) {
		return "", notPermitted(reasonApproveNotOwner)
	}

	record, err := u.lendingRepo.ApproveReturn(ctx, book.ID, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", notPermitted(reasonNotReturned)
		}

		return "", err
	}

	return record.ID.Hex(), nil
}

func (u *lendingUsecase) load(
	ctx context.Context,
	identity auth.Identity,
	bookID string,
) (*model.Book, bson.ObjectID, error) {
	userID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return nil, bson.NilObjectID, ErrInvalidSession
	}

	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return nil, bson.NilObjectID, err
	}

	return book, userID, nil
}

func findBook(ctx context.Context, bookRepo repository.BookRepository, bookID string) (*model.Book, error) {
	id, err := parseID(bookID)
	if err != nil {
		return nil, err
	}

	book, err := bookRepo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return book, nil
}
