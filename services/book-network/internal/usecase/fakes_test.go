package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/mailer"
)

var errDuplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[bson.ObjectID]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, errDuplicateKey
		}
	}

	user.ID = bson.NewObjectID()
	stored := *user
	r.users[user.ID] = &stored

	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id bson.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id bson.ObjectID,
	params repository.UpdateUserParams,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Enabled != nil {
		user.Enabled = *params.Enabled
	}
	if params.AccountLocked != nil {
		user.AccountLocked = *params.AccountLocked
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	copied := *user

	return &copied, nil
}

// put stores user as is, for arranging state directly.
func (r *fakeUserRepo) put(user *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	stored := *user
	r.users[user.ID] = &stored

	return user
}

type fakeRoleRepo struct {
	roles map[string]*model.Role
}

func (r *fakeRoleRepo) EnsureRole(_ context.Context, name string) (*model.Role, error) {
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	role := &model.Role{ID: bson.NewObjectID(), Name: name}
	r.roles[name] = role

	return role, nil
}

func (r *fakeRoleRepo) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	return role, nil
}

type fakeTokenRepo struct {
	mu        sync.Mutex
	tokens    []*model.ActivationToken
	createErr error
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token *model.ActivationToken) (*model.ActivationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.tokens {
		if existing.Pending && existing.Token == token.Token {
			return nil, errDuplicateKey
		}
	}

	token.ID = bson.NewObjectID()
	token.ValidatedAt = nil
	token.Pending = true
	stored := *token
	r.tokens = append(r.tokens, &stored)

	return token, nil
}

func (r *fakeTokenRepo) GetTokenByCode(_ context.Context, code string) (*model.ActivationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *model.ActivationToken
	for i := len(r.tokens) - 1; i >= 0; i-- {
		if r.tokens[i].Token != code {
			continue
		}
		if r.tokens[i].Pending {
			found = r.tokens[i]
			break
		}
		if found == nil {
			found = r.tokens[i]
		}
	}
	if found == nil {
		return nil, mongo.ErrNoDocuments
	}

	copied := *found
	return &copied, nil
}

func (r *fakeTokenRepo) IsCodePending(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.Pending && token.Token == code {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeTokenRepo) MarkTokenAsValidated(_ context.Context, id bson.ObjectID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.ID == id {
			if !token.Pending || token.ValidatedAt != nil {
				return false, nil
			}
			validatedAt := at
			token.ValidatedAt = &validatedAt
			token.Pending = false
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeTokenRepo) forUser(userID bson.ObjectID) []*model.ActivationToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tokens []*model.ActivationToken
	for _, token := range r.tokens {
		if token.UserID == userID {
			copied := *token
			tokens = append(tokens, &copied)
		}
	}

	return tokens
}

type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeMailQueue struct {
	mu     sync.Mutex
	emails []mailer.Email
	err    error
}

func (q *fakeMailQueue) Enqueue(email mailer.Email) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	q.emails = append(q.emails, email)

	return nil
}

func (q *fakeMailQueue) sent() []mailer.Email {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]mailer.Email(nil), q.emails...)
}

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[bson.ObjectID]*model.Book
	seq   int
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[bson.ObjectID]*model.Book)}
}

func (r *fakeBookRepo) CreateBook(_ context.Context, book *model.Book) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	book.ID = bson.NewObjectID()
	book.CreatedAt = time.Unix(int64(r.seq), 0)
	stored := *book
	r.books[book.ID] = &stored

	return book, nil
}

func (r *fakeBookRepo) GetBook(_ context.Context, id bson.ObjectID) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *book

	return &copied, nil
}

func (r *fakeBookRepo) GetBooks(_ context.Context, ids []bson.ObjectID) ([]*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var books []*model.Book
	for _, id := range ids {
		if book, ok := r.books[id]; ok {
			copied := *book
			books = append(books, &copied)
		}
	}

	return books, nil
}

func (r *fakeBookRepo) UpdateBook(
	_ context.Context,
	id bson.ObjectID,
	params repository.UpdateBookParams,
) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.BookCover != nil {
		cover := *params.BookCover
		book.BookCover = &cover
	}
	copied := *book

	return &copied, nil
}

func (r *fakeBookRepo) ToggleFlag(
	_ context.Context,
	id, ownerID bson.ObjectID,
	flag repository.BookFlag,
) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok || book.OwnerID != ownerID {
		return nil, mongo.ErrNoDocuments
	}
	switch flag {
	case repository.BookShareable:
		book.Shareable = !book.Shareable
	case repository.BookArchived:
		book.Archived = !book.Archived
	}
	copied := *book

	return &copied, nil
}

func (r *fakeBookRepo) ListDisplayableBooks(
	_ context.Context,
	userID bson.ObjectID,
	params repository.ListParams,
) ([]*model.Book, int64, error) {
	return r.list(func(b *model.Book) bool {
		return !b.Archived && b.Shareable && b.OwnerID != userID
	}, params)
}

func (r *fakeBookRepo) ListBooksByOwner(
	_ context.Context,
	ownerID bson.ObjectID,
	params repository.ListParams,
) ([]*model.Book, int64, error) {
	return r.list(func(b *model.Book) bool { return b.OwnerID == ownerID }, params)
}

func (r *fakeBookRepo) list(match func(*model.Book) bool, params repository.ListParams) ([]*model.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Book
	for _, book := range r.books {
		if match(book) {
			copied := *book
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	return paginate(matched, params), int64(len(matched)), nil
}

func (r *fakeBookRepo) put(book *model.Book) *model.Book {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	book.ID = bson.NewObjectID()
	book.CreatedAt = time.Unix(int64(r.seq), 0)
	stored := *book
	r.books[book.ID] = &stored

	return book
}

// fakeLendingRepo enforces the open-record uniqueness the MongoDB index provides.
type fakeLendingRepo struct {
	mu      sync.Mutex
	records []*model.LendingRecord
	seq     int
}

func (r *fakeLendingRepo) CreateRecord(_ context.Context, record *model.LendingRecord) (*model.LendingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.BookID == record.BookID && existing.BorrowerID == record.BorrowerID && !existing.Returned {
			return nil, errDuplicateKey
		}
	}

	r.seq++
	record.ID = bson.NewObjectID()
	record.CreatedAt = time.Unix(int64(r.seq), 0)
	record.Returned = false
	record.ReturnApproved = false
	stored := *record
	r.records = append(r.records, &stored)

	return record, nil
}

func (r *fakeLendingRepo) ExistsUnreturned(_ context.Context, bookID, borrowerID bson.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.records {
		if record.BookID == bookID && record.BorrowerID == borrowerID && !record.Returned {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeLendingRepo) MarkReturned(_ context.Context, bookID, borrowerID bson.ObjectID) (*model.LendingRecord, error) {
	return r.update(func(record *model.LendingRecord) bool {
		return record.BookID == bookID && record.BorrowerID == borrowerID && !record.Returned && !record.ReturnApproved
	}, func(record *model.LendingRecord) { record.Returned = true })
}

func (r *fakeLendingRepo) ApproveReturn(_ context.Context, bookID, ownerID bson.ObjectID) (*model.LendingRecord, error) {
	return r.update(func(record *model.LendingRecord) bool {
		return record.BookID == bookID && record.BookOwnerID == ownerID && record.Returned && !record.ReturnApproved
	}, func(record *model.LendingRecord) { record.ReturnApproved = true })
}

func (r *fakeLendingRepo) update(
	match func(*model.LendingRecord) bool,
	apply func(*model.LendingRecord),
) (*model.LendingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.records {
		if match(record) {
			apply(record)
			copied := *record
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeLendingRepo) ListByBorrower(
	_ context.Context,
	borrowerID bson.ObjectID,
	params repository.ListParams,
) ([]*model.LendingRecord, int64, error) {
	return r.list(func(record *model.LendingRecord) bool { return record.BorrowerID == borrowerID }, params)
}

func (r *fakeLendingRepo) ListReturnedByOwner(
	_ context.Context,
	ownerID bson.ObjectID,
	params repository.ListParams,
) ([]*model.LendingRecord, int64, error) {
	return r.list(func(record *model.LendingRecord) bool {
		return record.BookOwnerID == ownerID && record.Returned
	}, params)
}

func (r *fakeLendingRepo) list(
	match func(*model.LendingRecord) bool,
	params repository.ListParams,
) ([]*model.LendingRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.LendingRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if match(r.records[i]) {
			copied := *r.records[i]
			matched = append(matched, &copied)
		}
	}

	return paginate(matched, params), int64(len(matched)), nil
}

func (r *fakeLendingRepo) all() []model.LendingRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]model.LendingRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, *record)
	}

	return records
}

type fakeFeedbackRepo struct {
	mu        sync.Mutex
	feedbacks []*model.Feedback
}

func (r *fakeFeedbackRepo) CreateFeedback(_ context.Context, feedback *model.Feedback) (*model.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	feedback.ID = bson.NewObjectID()
	stored := *feedback
	r.feedbacks = append(r.feedbacks, &stored)

	return feedback, nil
}

func (r *fakeFeedbackRepo) ListByBook(
	_ context.Context,
	bookID bson.ObjectID,
	params repository.ListParams,
) ([]*model.Feedback, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Feedback
	for i := len(r.feedbacks) - 1; i >= 0; i-- {
		if r.feedbacks[i].BookID == bookID {
			copied := *r.feedbacks[i]
			matched = append(matched, &copied)
		}
	}

	return paginate(matched, params), int64(len(matched)), nil
}

func (r *fakeFeedbackRepo) AverageNotes(
	_ context.Context,
	bookIDs []bson.ObjectID,
) (map[bson.ObjectID]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sums := make(map[bson.ObjectID]float64)
	counts := make(map[bson.ObjectID]int)
	for _, feedback := range r.feedbacks {
		sums[feedback.BookID] += feedback.Note
		counts[feedback.BookID]++
	}

	averages := make(map[bson.ObjectID]float64)
	for _, id := range bookIDs {
		if counts[id] > 0 {
			averages[id] = sums[id] / float64(counts[id])
		}
	}

	return averages, nil
}

type fakeCoverStore struct {
	mu      sync.Mutex
	files   map[bson.ObjectID][]byte
	deleted []bson.ObjectID
}

func newFakeCoverStore() *fakeCoverStore {
	return &fakeCoverStore{files: make(map[bson.ObjectID][]byte)}
}

func (s *fakeCoverStore) Upload(_ context.Context, _, _ string, source io.Reader) (bson.ObjectID, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return bson.NilObjectID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := bson.NewObjectID()
	s.files[id] = data

	return id, nil
}

func (s *fakeCoverStore) Open(_ context.Context, id bson.ObjectID) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeCoverStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, id)
	s.deleted = append(s.deleted, id)

	return nil
}

func paginate[T any](items []T, params repository.ListParams) []T {
	if params.Offset >= uint64(len(items)) {
		return nil
	}
	end := params.Offset + params.Limit
	if params.Limit == 0 || end > uint64(len(items)) {
		end = uint64(len(items))
	}

	return items[params.Offset:end]
}
