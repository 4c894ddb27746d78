package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// IDSeparator joins the segments of a document identifier.
const IDSeparator = ":"

// PlaygroundNamespace is the reserved namespace that maps to the default collection.
const PlaygroundNamespace = "playground"

// TemplatesSegment marks a document as a template when present anywhere in its id.
const TemplatesSegment = "templates"

// UnknownInstitution is the institution recorded for year-format identifiers.
const UnknownInstitution = "unknown"

// Document types.
const (
	DocTypeReport   = "report"
	DocTypeTemplate = "template"
)

// DocumentID is a colon-joined sequence of path segments,
// e.g. "reports:mri:2024:g287-jane-doe".
type DocumentID string

// String returns the identifier text.
func (id DocumentID) String() string {
	return string(id)
}

// Segments returns the identifier split on the separator.
func (id DocumentID) Segments() []string {
	if id == "" {
		return nil
	}
	return strings.Split(string(id), IDSeparator)
}

// Namespace returns the first segment, which selects the target collection.
func (id DocumentID) Namespace() string {
	segs := id.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// CollectionFor returns the collection a document belongs to.
// Empty and playground namespaces fall back to defaultCollection.
func CollectionFor(id DocumentID, defaultCollection string) string {
	ns := id.Namespace()
	if ns == "" || ns == PlaygroundNamespace {
		return defaultCollection
	}
	return ns
}

// ParseIdentifier converts a storage path into a document identifier.
// The base prefix and the trailing extension are stripped, the remainder is
// split on path separators, empty segments are dropped and the rest are
// joined with ":". An empty result is reported as ErrMalformedInput.
func ParseIdentifier(p, basePrefix string) (DocumentID, error) {
	rel := filepath.ToSlash(p)
	if basePrefix != "" {
		if r, ok := trimBase(p, basePrefix); ok {
			rel = r
		} else if r, ok := trimBase(absPath(p), absPath(basePrefix)); ok {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	var segs []string
	for _, s := range strings.Split(rel, "/") {
		s = strings.TrimSpace(s)
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return "", fmt.Errorf("parse identifier %q: %w", p, ErrMalformedInput)
	}
	return DocumentID(strings.Join(segs, IDSeparator)), nil
}

// trimBase returns p relative to base when p lies at or below it.
func trimBase(p, base string) (string, bool) {
	base = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(base)), "/")
	cleaned := filepath.ToSlash(filepath.Clean(p))
	switch {
	case cleaned == base:
		return "", true
	case base == "":
		return cleaned, true
	case strings.HasPrefix(cleaned, base+"/"):
		return cleaned[len(base)+1:], true
	}
	return "", false
}

// absPath resolves p against the working directory, so relative and
// absolute spellings of the same location compare equal.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// DocumentMetadata is the domain metadata extracted from an identifier.
// Exactly one of the year format (Year, Institution, Registration, Name) or
// the institution format (Institution, Date, Name) is populated for reports.
type DocumentMetadata struct {
	DocumentID   DocumentID
	Type         string
	Modality     string
	Year         string
	Institution  string
	Registration string
	Date         string
	Name         string
}

// Map returns the metadata as a flat map, omitting empty fields.
func (m DocumentMetadata) Map() map[string]any {
	out := map[string]any{
		"document_id": string(m.DocumentID),
		"type":        m.Type,
	}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("modality", m.Modality)
	set("year", m.Year)
	set("institution", m.Institution)
	set("registration", m.Registration)
	set("date", m.Date)
	set("name", m.Name)
	return out
}

// IsTemplate reports whether the document is a template.
func (m DocumentMetadata) IsTemplate() bool {
	return m.Type == DocTypeTemplate
}

var dateNamePattern = regexp.MustCompile(`^(\d{4}|\d{2})-?(\d{2})-?(\d{2})-(.+)$`)

// ExtractMetadata derives domain metadata from an identifier. It never fails.
//
// Segment 2 is the modality. A numeric segment 3 selects the year format,
// otherwise segment 3 is the institution and the final segment is read as
// date-name. Templates skip both and only read registration-name from the
// final segment. The year/institution split is a naming heuristic: an
// institution whose name is all digits is indistinguishable from a year.
func ExtractMetadata(id DocumentID) DocumentMetadata {
	segs := id.Segments()
	md := DocumentMetadata{DocumentID: id, Type: DocTypeReport}
	if len(segs) == 0 {
		return md
	}
	for _, s := range segs {
		if s == TemplatesSegment {
			md.Type = DocTypeTemplate
			break
		}
	}
	if len(segs) >= 2 {
		md.Modality = segs[1]
	}
	final := segs[len(segs)-1]

	if md.IsTemplate() {
		md.Registration, md.Name = splitRegistration(final)
		return md
	}
	if len(segs) < 3 {
		return md
	}

	third := segs[2]
	if isNumeric(third) {
		md.Year = third
		md.Institution = UnknownInstitution
		if len(segs) > 3 {
			md.Registration, md.Name = splitRegistration(final)
		}
		return md
	}

	md.Institution = third
	if len(segs) > 3 {
		md.Date, md.Name = splitDateName(final)
	}
	return md
}

// ExpandYear converts a two-digit year to four digits: values up to and
// including 70 map to 20xx, the rest to 19xx. Other lengths pass through.
func ExpandYear(yy string) string {
	if len(yy) != 2 || !isNumeric(yy) {
		return yy
	}
	n := int(yy[0]-'0')*10 + int(yy[1]-'0')
	if n <= 70 {
		return "20" + yy
	}
	return "19" + yy
}

// splitRegistration reads "g287-jane-doe" as registration "g287" and name
// "jane doe". A prefix without digits is not a registration.
func splitRegistration(seg string) (registration, name string) {
	if i := strings.Index(seg, "-"); i > 0 && containsDigit(seg[:i]) {
		return seg[:i], humanize(seg[i+1:])
	}
	return "", humanize(seg)
}

// splitDateName reads "2024-01-15-jane-doe" or "240115-jane-doe".
func splitDateName(seg string) (date, name string) {
	m := dateNamePattern.FindStringSubmatch(seg)
	if m == nil {
		return "", humanize(seg)
	}
	return ExpandYear(m[1]) + "-" + m[2] + "-" + m[3], humanize(m[4])
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
