package payload

type FeedbackRequest struct {
	Note    *float64 `json:"note"    validate:"required,min=0,max=5"`
	Comment string   `json:"comment" validate:"required"`
	BookID  string   `json:"bookId"  validate:"required,mongodb"`
}

type FeedbackResponse struct {
	Note        float64 `json:"note"`
	Comment     string  `json:"comment"`
	OwnFeedback bool    `json:"ownFeedback"`
}
