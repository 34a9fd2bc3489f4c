package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// FeedbackUsecase defines the rating operations.
type FeedbackUsecase interface {
	Save(ctx context.Context, identity auth.Identity, params SaveFeedbackParams) (string, error)
	FindAllByBook(ctx context.Context, identity auth.Identity, bookID string, params PageParams) (*Page[*FeedbackDetails], error)
}

// SaveFeedbackParams defines the parameters for rating a book.
type SaveFeedbackParams struct {
	BookID  string
	Note    float64
	Comment string
}

// FeedbackDetails is a feedback as seen by the caller.
type FeedbackDetails struct {
	Note        float64
	Comment     string
	OwnFeedback bool
}

type feedbackUsecase struct {
	bookRepo     repository.BookRepository
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackUsecase(bookRepo repository.BookRepository, feedbackRepo repository.FeedbackRepository) FeedbackUsecase {
	return &feedbackUsecase{
		bookRepo:     bookRepo,
		feedbackRepo: feedbackRepo,
	}
}

func (u *feedbackUsecase) Save(ctx context.Context, identity auth.Identity, params SaveFeedbackParams) (string, error) {
	userID, err := bson.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return "", ErrInvalidSession
	}

	book, err := findBook(ctx, u.bookRepo, params.BookID)
	if err != nil {
		return "", err
	}

	if !IsShareable(book) {
		return "", notPermitted("You cannot give a feedback to a book that is archived or not shareable")
	}
	if IsOwner(book, identity) {
		return "", notPermitted("You cannot give a feedback to your own book")
	}

	feedback, err := u.feedbackRepo.CreateFeedback(ctx, &model.Feedback{
		BookID:    book.ID,
		Note:      params.Note,
		Comment:   params.Comment,
		CreatedBy: userID,
	})
	if err != nil {
		return "", err
	}

	return feedback.ID.Hex(), nil
}

func (u *feedbackUsecase) FindAllByBook(
	ctx context.Context,
	identity auth.Identity,
	bookID string,
	params PageParams,
) (*Page[*FeedbackDetails], error) {
	id, err := parseID(bookID)
	if err != nil {
		return nil, err
	}

	params = params.normalize()
	feedbacks, total, err := u.feedbackRepo.ListByBook(ctx, id, params.listParams())
	if err != nil {
		return nil, err
	}

	details := make([]*FeedbackDetails, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		details = append(details, &FeedbackDetails{
			Note:        feedback.Note,
			Comment:     feedback.Comment,
			OwnFeedback: feedback.CreatedBy.Hex() == identity.UserID,
		})
	}

	return newPage(details, params, total), nil
}
