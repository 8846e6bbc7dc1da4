package sieve

import "net/textproto"

// FieldType classifies an RFC 5322 header field by the kind of value it
// carries. The address-valued kinds form a contiguous range from From to
// LastAddressField, so "is this an address field" is a range check.
type FieldType int

const (
	// UnknownField is returned for field names this implementation has
	// no registry entry for.
	UnknownField FieldType = iota

	// Address-valued fields, RFC 5322 section 3.6.2/3.6.3/3.6.6.
	FromField
	SenderField
	ReplyToField
	ToField
	CcField
	BccField
	ResentFromField
	ResentSenderField
	ResentToField
	ResentCcField
	ResentBccField
	ReturnPathField

	// The rest carry dates, identifiers or unstructured text.
	DateField
	SubjectField
	MessageIDField
	InReplyToField
	ReferencesField
	CommentsField
	KeywordsField
	ResentDateField
	ResentMessageIDField
	ReceivedField
	ContentTypeField
	ContentTransferEncodingField
	MIMEVersionField
)

// LastAddressField marks the end of the address-valued range. A field f
// is address-valued iff f > UnknownField && f <= LastAddressField.
const LastAddressField = ReturnPathField

var fieldTypes = map[string]FieldType{
	"From":                      FromField,
	"Sender":                    SenderField,
	"Reply-To":                  ReplyToField,
	"To":                        ToField,
	"Cc":                        CcField,
	"Bcc":                       BccField,
	"Resent-From":               ResentFromField,
	"Resent-Sender":             ResentSenderField,
	"Resent-To":                 ResentToField,
	"Resent-Cc":                 ResentCcField,
	"Resent-Bcc":                ResentBccField,
	"Return-Path":               ReturnPathField,
	"Date":                      DateField,
	"Subject":                   SubjectField,
	"Message-Id":                MessageIDField,
	"In-Reply-To":               InReplyToField,
	"References":                ReferencesField,
	"Comments":                  CommentsField,
	"Keywords":                  KeywordsField,
	"Resent-Date":               ResentDateField,
	"Resent-Message-Id":         ResentMessageIDField,
	"Received":                  ReceivedField,
	"Content-Type":              ContentTypeField,
	"Content-Transfer-Encoding": ContentTransferEncodingField,
	"Mime-Version":              MIMEVersionField,
}

// HeaderFieldType looks up the field kind for name. The lookup is
// case-insensitive; unknown names return UnknownField.
func HeaderFieldType(name string) FieldType {
	return fieldTypes[HeaderCase(name)]
}

// AddressField reports whether name names a header field whose value is
// a list of addresses, e.g. From or Resent-To.
func AddressField(name string) bool {
	t := HeaderFieldType(name)
	return t > UnknownField && t <= LastAddressField
}

// HeaderCase returns name in canonical header casing, e.g. "message-id"
// becomes "Message-Id".
func HeaderCase(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}
