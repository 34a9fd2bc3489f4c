package handler_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/auth"
)

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Register(ctx context.Context, params usecase.RegisterParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockAuthUsecase) Authenticate(ctx context.Context, params usecase.AuthenticateParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

type mockActivationUsecase struct {
	mock.Mock
}

func (m *mockActivationUsecase) Issue(ctx context.Context, user *model.User) (*model.ActivationToken, error) {
	args := m.Called(ctx, user)
	token, _ := args.Get(0).(*model.ActivationToken)
	return token, args.Error(1)
}

func (m *mockActivationUsecase) Notify(user *model.User, token *model.ActivationToken) {
	m.Called(user, token)
}

func (m *mockActivationUsecase) Consume(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) Verify(ctx context.Context, token string) (auth.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Identity), args.Error(1)
}

type mockBookUsecase struct {
	mock.Mock
}

func (m *mockBookUsecase) Save(ctx context.Context, identity auth.Identity, params usecase.SaveBookParams) (string, error) {
	args := m.Called(ctx, identity, params)
	return args.String(0), args.Error(1)
}

func (m *mockBookUsecase) FindByID(ctx context.Context, bookID string) (*usecase.BookDetails, error) {
	args := m.Called(ctx, bookID)
	details, _ := args.Get(0).(*usecase.BookDetails)
	return details, args.Error(1)
}

func (m *mockBookUsecase) FindAllDisplayable(
	ctx context.Context,
	identity auth.Identity,
	params usecase.PageParams,
) (*usecase.Page[*usecase.BookDetails], error) {
	args := m.Called(ctx, identity, params)
	page, _ := args.Get(0).(*usecase.Page[*usecase.BookDetails])
	return page, args.Error(1)
}

func (m *mockBookUsecase) FindAllByOwner(
	ctx context.Context,
	identity auth.Identity,
	params usecase.PageParams,
) (*usecase.Page[*usecase.BookDetails], error) {
	args := m.Called(ctx, identity, params)
	page, _ := args.Get(0).(*usecase.Page[*usecase.BookDetails])
	return page, args.Error(1)
}

func (m *mockBookUsecase) FindAllBorrowed(
	ctx context.Context,
	identity auth.Identity,
	params usecase.PageParams,
) (*usecase.Page[*usecase.BorrowedBook], error) {
	args := m.Called(ctx, identity, params)
	page, _ := args.Get(0).(*usecase.Page[*usecase.BorrowedBook])
	return page, args.Error(1)
}

func (m *mockBookUsecase) FindAllReturned(
	ctx context.Context,
	identity auth.Identity,
	params usecase.PageParams,
) (*usecase.Page[*usecase.BorrowedBook], error) {
	args := m.Called(ctx, identity, params)
	page, _ := args.Get(0).(*usecase.Page[*usecase.BorrowedBook])
	return page, args.Error(1)
}

func (m *mockBookUsecase) ToggleShareable(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	args := m.Called(ctx, identity, bookID)
	return args.String(0), args.Error(1)
}

func (m *mockBookUsecase) ToggleArchived(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	args := m.Called(ctx, identity, bookID)
	return args.String(0), args.Error(1)
}

func (m *mockBookUsecase) UploadCover(ctx context.Context, identity auth.Identity, bookID string, content io.Reader) error {
	args := m.Called(ctx, identity, bookID, content)
	return args.Error(0)
}

func (m *mockBookUsecase) DownloadCover(ctx context.Context, bookID string) (*usecase.Cover, error) {
	args := m.Called(ctx, bookID)
	cover, _ := args.Get(0).(*usecase.Cover)
	return cover, args.Error(1)
}

type mockLendingUsecase struct {
	mock.Mock
}

func (m *mockLendingUsecase) Borrow(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	args := m.Called(ctx, identity, bookID)
	return args.String(0), args.Error(1)
}

func (m *mockLendingUsecase) Return(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	args := m.Called(ctx, identity, bookID)
	return args.String(0), args.Error(1)
}

func (m *mockLendingUsecase) ApproveReturn(ctx context.Context, identity auth.Identity, bookID string) (string, error) {
	args := m.Called(ctx, identity, bookID)
	return args.String(0), args.Error(1)
}

type mockFeedbackUsecase struct {
	mock.Mock
}

func (m *mockFeedbackUsecase) Save(
	ctx context.Context,
	identity auth.Identity,
	params usecase.SaveFeedbackParams,
) (string, error) {
	args := m.Called(ctx, identity, params)
	return args.String(0), args.Error(1)
}

func (m *mockFeedbackUsecase) FindAllByBook(
	ctx context.Context,
	identity auth.Identity,
	bookID string,
	params usecase.PageParams,
) (*usecase.Page[*usecase.FeedbackDetails], error) {
	args := m.Called(ctx, identity, bookID, params)
	page, _ := args.Get(0).(*usecase.Page[*usecase.FeedbackDetails])
	return page, args.Error(1)
}
