package models

// DocumentType classifies a verification document.
type DocumentType string

const (
	DocumentIdentity           DocumentType = "identity"
	DocumentKbis               DocumentType = "kbis"
	DocumentAssociationStatute DocumentType = "association_statute"
	DocumentOther              DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentIdentity, DocumentKbis, DocumentAssociationStatute, DocumentOther:
		return true
	}
	return false
}

// DocumentUpload describes a file sent to POST /upload.
type DocumentUpload struct {
	Path    string
	Type    DocumentType
	Comment string
}
