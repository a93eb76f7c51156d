package domain

// SearchEnvelope is the top-level wrapper of a Guardian search response.
// Every field is optional on the wire and decoded defensively; a nil Response
// means the envelope itself is malformed.
type SearchEnvelope struct {
	Response *SearchResponse `json:"response"`
}

// SearchResponse is the results container inside the envelope.
type SearchResponse struct {
	Results []RawArticle `json:"results"`
}

// RawArticle mirrors one API record. No field is guaranteed present.
type RawArticle struct {
	ID                 string     `json:"id"`
	WebPublicationDate string     `json:"webPublicationDate"`
	WebURL             string     `json:"webUrl"`
	SectionName        string     `json:"sectionName"`
	Fields             *RawFields `json:"fields"`
}

// RawFields carries the requested show-fields of a record. Pointers keep an
// absent key distinguishable from an empty value: only absence triggers the
// normalizer's placeholder defaults.
type RawFields struct {
	Headline *string `json:"headline"`
	BodyText *string `json:"bodyText"`
}
