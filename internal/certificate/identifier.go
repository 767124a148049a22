package certificate

import (
	"strconv"
	"strings"
	"time"

	id "vaxcert/pkg/domain"
)

const (
	identifierPrefix   = "VAC"
	subjectPadWidth    = 5
	instantSuffixWidth = 5
)

// NewIdentifier derives a certificate identifier from the subject and the
// generation instant: a fixed prefix, the subject identifier left-padded with
// zeros to a minimum width, and the last characters of the instant's uppercase
// base-36 unix-millisecond encoding.
//
// The identifier is a display and lookup convenience, not a security token;
// collisions are accepted as non-critical. Pure given a fixed instant, which is
// how tests pin it.
func NewIdentifier(subject id.SubjectID, instant time.Time) string {
	return identifierPrefix + "-" + padLeft(subject.String(), subjectPadWidth) + "-" + instantSuffix(instant)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func instantSuffix(instant time.Time) string {
	encoded := strings.ToUpper(strconv.FormatInt(instant.UnixMilli(), 36))
	if len(encoded) <= instantSuffixWidth {
		return padLeft(encoded, instantSuffixWidth)
	}
	return encoded[len(encoded)-instantSuffixWidth:]
}
