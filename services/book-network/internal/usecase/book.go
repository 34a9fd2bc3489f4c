package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// BookUsecase defines the catalogue operations.
type BookUsecase interface {
	Save(ctx context.Context, identity auth.Identity, params SaveBookParams) (string, error)
	FindByID(ctx context.Context, bookID string) (*BookDetails, error)

	// FindAllDisplayable lists shareable, non-archived books owned by someone else.
	FindAllDisplayable(ctx context.Context, identity auth.Identity, params PageParams) (*Page[*BookDetails], error)
	FindAllByOwner(ctx context.Context, identity auth.Identity, params PageParams) (*Page[*BookDetails], error)
	FindAllBorrowed(ctx context.Context, identity auth.Identity, params PageParams) (*Page[*BorrowedBook], error)
	FindAllReturned(ctx context.Context, identity auth.Identity, params PageParams) (*Page[*BorrowedBook], error)

	ToggleShareable(ctx context.Context, identity auth.Identity, bookID string) (string, error)
	ToggleArchived(ctx context.Context, identity auth.Identity, bookID string) (string, error)

	UploadCover(ctx context.Context, identity auth.Identity, bookID string, content io.Reader) error
	DownloadCover(ctx context.Context, bookID string) (*Cover, error)
}

// SaveBookParams defines the parameters for creating a book.
type SaveBookParams struct {
	Title      string
	AuthorName string
	ISBN       string
	Synopsis   string
	Shareable  bool
}

// BookDetails is a book with its owner's name and average rating.
type BookDetails struct {
	Book  *model.Book
	Owner string
	Rate  float64
}

// BorrowedBook is a lending record joined with its book.
type BorrowedBook struct {
	BookID         string
	Title          string
	AuthorName     string
	ISBN           string
	Rate           float64
	Returned       bool
	ReturnApproved bool
	State          model.LendingState
}

// Cover is a stored cover image.
type Cover struct {
	Data        []byte
	ContentType string
}

var ErrUnsupportedCover = errors.New("cover must be an image")

type bookUsecase struct {
	bookRepo     repository.BookRepository
	userRepo     repository.UserRepository
	lendingRepo  repository.LendingRecordRepository
	feedbackRepo repository.FeedbackRepository
	coverStore   repository.CoverStore
	logger       *zerolog.Logger
}

func NewBookUsecase(
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	lendingRepo repository.LendingRecordRepository,
	feedbackRepo repository.FeedbackRepository,
	coverStore repository.CoverStore,
	logger *zerolog.Logger,
) BookUsecase {
	return &bookUsecase{
		bookRepo:     bookRepo,
		userRepo:     userRepo,
		lendingRepo:  lendingRepo,
		feedbackRepo: feedbackRepo,
		coverStore:   coverStore,
		logger:       logger,
	}
}

func (u *bookUsecase) Save(ctx context.Context, identity auth.Identity, params SaveBookParams) (string, error) {
	ownerID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return "", ErrInvalidSession
	}

	book, err := u.bookRepo.CreateBook(ctx, &model.Book{
		Title:      params.Title,
		AuthorName: params.AuthorName,
		ISBN:       params.ISBN,
		Synopsis:   params.Synopsis,
		Shareable:  params.Shareable,
		OwnerID:    ownerID,
		CreatedBy:  ownerID,
	})
	if err != nil {
		return "", err
	}

	return book.ID.Hex(), nil
}

func (u *bookUsecase) FindByID(ctx context.Context, bookID string) (*BookDetails, error) {
	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return nil, err
	}

	details, err := u.describe(ctx, []*model.Book{book})
	if err != nil {
		return nil, err
	}

	return details[0], nil
}

func (u *bookUsecase) FindAllDisplayable(
	ctx context.Context,
	identity auth.Identity,
	params PageParams,
) (*Page[*BookDetails], error) {
	userID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}

	params = params.normalize()
	books, total, err := u.bookRepo.ListDisplayableBooks(ctx, userID, params.listParams())
	if err != nil {
		return nil, err
	}

	details, err := u.describe(ctx, books)
	if err != nil {
		return nil, err
	}

	return newPage(details, params, total), nil
}

func (u *bookUsecase) FindAllByOwner(
	ctx context.Context,
	identity auth.Identity,
	params PageParams,
) (*Page[*BookDetails], error) {
	ownerID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}

	params = params.normalize()
	books, total, err := u.bookRepo.ListBooksByOwner(ctx, ownerID, params.listParams())
	if err != nil {
		return nil, err
	}

	details, err := u.describe(ctx, books)
	if err != nil {
		return nil, err
	}

	return newPage(details, params, total), nil
}

func (u *bookUsecase) FindAllBorrowed(
	ctx context.Context,
	identity auth.Identity,
	params PageParams,
) (*Page[*BorrowedBook], error) {
	borrowerID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}

	params = params.normalize()
	records, total, err := u.lendingRepo.ListByBorrower(ctx, borrowerID, params.listParams())
	if err != nil {
		return nil, err
	}

	borrowed, err := u.joinBooks(ctx, records)
	if err != nil {
		return nil, err
	}

	return newPage(borrowed, params, total), nil
}

func (u *bookUsecase) FindAllReturned(
	ctx context.Context,
	identity auth.Identity,
	params PageParams,
) (*Page[*BorrowedBook], error) {
	ownerID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}

	params = params.normalize()
	records, total, err := u.lendingRepo.ListReturnedByOwner(ctx, ownerID, params.listParams())
	if err != nil {
		return nil, err
	}

	returned, err := u.joinBooks(ctx, records)
	if err != nil {
		return nil, err
	}

	return newPage(returned, params, total), nil
}

func (u *bookUsecase) ToggleShareable(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return "", err
	}

	if !IsOwner(book, identity) {
		return "", notPermitted("You cannot update other books shareable status")
	}

	return u.toggle(ctx, book, repository.BookShareable)
}

func (u *bookUsecase) ToggleArchived(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return "", err
	}

	if !IsOwner(book, identity) {
		return "", notPermitted("You cannot update other books archived status")
	}

	return u.toggle(ctx, book, repository.BookArchived)
}

func (u *bookUsecase) toggle(ctx context.Context, book *model.Book, flag repository.BookFlag) (string, error) {
	if _, err := u.bookRepo.ToggleFlag(ctx, book.ID, book.OwnerID, flag); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}

		return "", err
	}

	return book.ID.Hex(), nil
}

func (u *bookUsecase) UploadCover(ctx context.Context, identity auth.Identity, bookID string, content io.Reader) error {
	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return err
	}

	if !IsOwner(book, identity) {
		return notPermitted("You cannot update the cover of a book you do not own")
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ErrUnsupportedCover
	}

	filename := uuid.NewString() + mtype.Extension()
	coverID, err := u.coverStore.Upload(ctx, filename, mtype.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}

	if _, err := u.bookRepo.UpdateBook(ctx, book.ID, repository.UpdateBookParams{BookCover: &coverID}); err != nil {
		return err
	}

	if book.BookCover != nil {
		if err := u.coverStore.Delete(ctx, *book.BookCover); err != nil {
			u.logger.Warn().Err(err).Str("cover_id", book.BookCover.Hex()).Msg("failed to delete replaced cover")
		}
	}

	return nil
}

func (u *bookUsecase) DownloadCover(ctx context.Context, bookID string) (*Cover, error) {
	book, err := findBook(ctx, u.bookRepo, bookID)
	if err != nil {
		return nil, err
	}

	if book.BookCover == nil {
		return nil, ErrNotFound
	}

	reader, err := u.coverStore.Open(ctx, *book.BookCover)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &Cover{
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
	}, nil
}

// describe resolves owner names and ratings for books, keeping their order.
func (u *bookUsecase) describe(ctx context.Context, books []*model.Book) ([]*BookDetails, error) {
	ids := make([]bson.ObjectID, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID)
	}

	rates, err := u.feedbackRepo.AverageNotes(ctx, ids)
	if err != nil {
		return nil, err
	}

	owners := make(map[bson.ObjectID]string)
	details := make([]*BookDetails, 0, len(books))
	for _, book := range books {
		name, ok := owners[book.OwnerID]
		if !ok {
			owner, err := u.userRepo.GetUser(ctx, book.OwnerID)
			switch {
			case err == nil:
				name = owner.FullName()
			case errors.Is(err, mongo.ErrNoDocuments):
				name = ""
			default:
				return nil, err
			}
			owners[book.OwnerID] = name
		}

		details = append(details, &BookDetails{
			Book:  book,
			Owner: name,
			Rate:  roundRate(rates[book.ID]),
		})
	}

	return details, nil
}

func (u *bookUsecase) joinBooks(ctx context.Context, records []*model.LendingRecord) ([]*BorrowedBook, error) {
	ids := make([]bson.ObjectID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.BookID)
	}

	books, err := u.bookRepo.GetBooks(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[bson.ObjectID]*model.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}

	rates, err := u.feedbackRepo.AverageNotes(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*BorrowedBook, 0, len(records))
	for _, record := range records {
		entry := &BorrowedBook{
			BookID:         record.BookID.Hex(),
			Rate:           roundRate(rates[record.BookID]),
			Returned:       record.Returned,
			ReturnApproved: record.ReturnApproved,
			State:          record.State(),
		}
		if book, ok := byID[record.BookID]; ok {
			entry.Title = book.Title
			entry.AuthorName = book.AuthorName
			entry.ISBN = book.ISBN
		}
		result = append(result, entry)
	}

	return result, nil
}

// roundRate keeps one decimal.
func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
