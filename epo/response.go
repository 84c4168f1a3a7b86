package epo

import (
	"bytes"
	"encoding/json"
)

// PublicationRef identifies one published document returned by a search.
type PublicationRef struct {
	// Number is the full publication number: country code, document
	// number, and kind code concatenated, e.g. "EP1000000A1".
	Number string

	// RefType is the OPS document-id-type of the reference, typically
	// "docdb" or "epodoc". It selects the reference format used when
	// retrieving the document.
	RefType string
}

// Abstract holds the abstract text retrieved for a single publication.
type Abstract struct {
	Number   string
	Title    string
	Abstract string
}

// OPS wraps every scalar in an object keyed "$". Attributes are keyed
// with a leading "@". Elements that can repeat appear either as a single
// object or as an array depending on cardinality, so every repeatable
// element is decoded through oneOrMany.

type opsString struct {
	Value string `json:"$"`
}

// oneOrMany decodes a JSON value that is either a single object or an
// array of objects into a slice.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*o = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*o = oneOrMany[T]{item}
	return nil
}

type searchEnvelope struct {
	WorldPatentData struct {
		BiblioSearch struct {
			TotalResultCount string `json:"@total-result-count"`
			SearchResult     struct {
				PublicationReference oneOrMany[publicationReference] `json:"ops:publication-reference"`
			} `json:"ops:search-result"`
		} `json:"ops:biblio-search"`
	} `json:"ops:world-patent-data"`
}

type publicationReference struct {
	DocumentID documentID `json:"document-id"`
}

type documentID struct {
	Type      string    `json:"@document-id-type"`
	Country   opsString `json:"country"`
	DocNumber opsString `json:"doc-number"`
	Kind      opsString `json:"kind"`
}

type abstractEnvelope struct {
	WorldPatentData struct {
		ExchangeDocuments struct {
			ExchangeDocument oneOrMany[exchangeDocument] `json:"exchange-document"`
		} `json:"exchange-documents"`
	} `json:"ops:world-patent-data"`
}

type exchangeDocument struct {
	BibliographicData struct {
		InventionTitle oneOrMany[localizedText] `json:"invention-title"`
	} `json:"bibliographic-data"`
	Abstract oneOrMany[abstractBlock] `json:"abstract"`
}

type localizedText struct {
	Lang  string `json:"@lang"`
	Value string `json:"$"`
}

type abstractBlock struct {
	Lang       string               `json:"@lang"`
	Paragraphs oneOrMany[opsString] `json:"p"`
}

// pickLocalized returns the English entry when present, otherwise the
// first entry.
func pickLocalized(entries []localizedText) string {
	for _, entry := range entries {
		if entry.Lang == "en" {
			return entry.Value
		}
	}
	if len(entries) > 0 {
		return entries[0].Value
	}
	return ""
}

func pickAbstract(blocks []abstractBlock) string {
	chosen := -1
	for i, block := range blocks {
		if block.Lang == "en" {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		if len(blocks) == 0 {
			return ""
		}
		chosen = 0
	}

	var buf bytes.Buffer
	for _, paragraph := range blocks[chosen].Paragraphs {
		if paragraph.Value == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(paragraph.Value)
	}
	return buf.String()
}
