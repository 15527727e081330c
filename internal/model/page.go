package model

// Page raw or rendered content retrieved for one URL
type Page struct {
	Body     []byte
	FinalURL string // URL actually served, after redirects
	Rendered bool   // true when produced by a headless browser
}
