package docket

// Link is a PDF hyperlink found in a link annotation.
type Link struct {
	Page  int     `json:"page"`  // 1-based page the annotation was found on
	Link  string  `json:"link"`  // URI target
	Title *string `json:"title"` // Resolved display title; nil when resolution failed
}

// HasTitle reports whether the link carries a resolved title.
func (l Link) HasTitle() bool {
	return l.Title != nil
}

// TitleOrEmpty returns the resolved title or "".
func (l Link) TitleOrEmpty() string {
	if l.Title == nil {
		return ""
	}
	return *l.Title
}

// AgendaItem is one numbered entry of the agenda.
type AgendaItem struct {
	ItemNumber  string `json:"item_number"`
	RawText     string `json:"raw_text"`
	Attachments []Link `json:"attachments,omitempty"`

	// Offset is the byte offset of RawText within the bounded region.
	Offset int `json:"-"`
}

// DocketList is the result of analyzing one agenda document.
type DocketList struct {
	Docket         []AgendaItem `json:"docket"`
	UnmatchedLinks []Link       `json:"unmatched_links"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
