package payload

type BookRequest struct {
	Title      string `json:"title"      validate:"required,max=255"`
	AuthorName string `json:"authorName" validate:"required,max=255"`
	ISBN       string `json:"isbn"       validate:"required,max=32"`
	Synopsis   string `json:"synopsis"   validate:"required"`
	Shareable  bool   `json:"shareable"`
}

type BookResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	AuthorName string  `json:"authorName"`
	ISBN       string  `json:"isbn"`
	Synopsis   string  `json:"synopsis"`
	Owner      string  `json:"owner"`
	Cover      string  `json:"cover,omitempty"`
	Rate       float64 `json:"rate"`
	Archived   bool    `json:"archived"`
	Shareable  bool    `json:"shareable"`
}

type BorrowedBookResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	AuthorName     string  `json:"authorName"`
	ISBN           string  `json:"isbn"`
	Rate           float64 `json:"rate"`
	Returned       bool    `json:"returned"`
	ReturnApproved bool    `json:"returnApproved"`
	State          string  `json:"state"`
}

// IDResponse carries the id of the record an operation created or changed.
type IDResponse struct {
	ID string `json:"id"`
}
