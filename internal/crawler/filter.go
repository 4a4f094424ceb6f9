package crawler

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nao1215/wikid/internal/model"
)

// WikipediaBaseURL is the article prefix of English Wikipedia.
const WikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// Predicate is an additional admission check applied to a normalized
// candidate. Predicates carry a name so that the active filter set can be
// listed and asserted on in tests.
type Predicate interface {
	// Name describes the predicate for display.
	Name() string

	// Allow reports whether id may become a candidate.
	Allow(id model.DocumentID) bool
}

// Rules configures a URLFilter.
// A nil set means "any value is allowed" for that dimension; an empty,
// non-nil set allows nothing.
type Rules struct {
	// Schemes are the allowed URL schemes, e.g. "https".
	Schemes []string

	// Domains are the allowed hosts (host[:port]), e.g. "en.wikipedia.org".
	Domains []string

	// FileTypes are the allowed path extensions including the dot.
	// The empty string admits paths without an extension.
	FileTypes []string

	// Predicates must all allow a candidate for it to be admitted.
	Predicates []Predicate

	// AllowAll disables every rule; only resolution and fragment
	// stripping are applied.
	AllowAll bool
}

// WikipediaRules returns the rules used for Wikipedia article searches:
// https only, en.wikipedia.org only, no file extension, and articles only.
func WikipediaRules() Rules {
	return Rules{
		Schemes:    []string{"https"},
		Domains:    []string{"en.wikipedia.org"},
		FileTypes:  []string{""},
		Predicates: []Predicate{NewArticlePredicate(WikipediaBaseURL)},
	}
}

// URLFilter admits and normalizes candidate references.
// It never returns an error; rejected references yield ok=false.
type URLFilter struct {
	rules     Rules
	schemes   map[string]bool
	domains   map[string]bool
	fileTypes map[string]bool
}

// NewURLFilter creates a URLFilter from rules.
func NewURLFilter(rules Rules) *URLFilter {
	return &URLFilter{
		rules:     rules,
		schemes:   toSet(rules.Schemes, strings.ToLower),
		domains:   toSet(rules.Domains, strings.ToLower),
		fileTypes: toSet(rules.FileTypes, strings.ToLower),
	}
}

func toSet(values []string, norm func(string) string) map[string]bool {
	if values == nil {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[norm(v)] = true
	}
	return set
}

// Predicates returns the configured predicates.
func (f *URLFilter) Predicates() []Predicate {
	return f.rules.Predicates
}

// Rules returns the rules the filter was built from.
func (f *URLFilter) Rules() Rules {
	return f.rules
}

// Filter resolves ref against base, strips the fragment and applies the
// rules. The order of checks is predicates, scheme, domain, file type.
func (f *URLFilter) Filter(base, ref string) (model.DocumentID, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	id, err := model.NormalizeID(base, ref)
	if err != nil {
		return "", false
	}
	if f.rules.AllowAll {
		return id, true
	}

	for _, p := range f.rules.Predicates {
		if !p.Allow(id) {
			return "", false
		}
	}

	u, err := url.Parse(string(id))
	if err != nil {
		return "", false
	}
	if f.schemes != nil && !f.schemes[u.Scheme] {
		return "", false
	}
	if f.domains != nil && !f.domains[u.Host] {
		return "", false
	}
	if f.fileTypes != nil && !f.fileTypes[strings.ToLower(fileType(u.Path))] {
		return "", false
	}

	return id, true
}

// extensionPattern matches what counts as a real file extension.
// Article titles such as "J._R._R._Tolkien" contain dots that are not
// extensions, so only short alphanumeric suffixes qualify.
var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)

// fileType returns the extension of the last path segment, or "" if the
// segment has none.
func fileType(p string) string {
	ext := path.Ext(p)
	if !extensionPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// ArticlePredicate admits documents under an article prefix whose title
// is outside any namespace. "https://en.wikipedia.org/wiki/Tent" passes;
// ".../wiki/File:Tent.jpg" and ".../wiki/Special:Random" do not.
type ArticlePredicate struct {
	prefix string
}

// NewArticlePredicate creates an ArticlePredicate for the given prefix.
func NewArticlePredicate(prefix string) ArticlePredicate {
	return ArticlePredicate{prefix: ArticlePrefix(prefix)}
}

// ArticlePrefix returns baseURL with a trailing slash, so that titles are
// appended as a new path segment: ".../wiki" becomes ".../wiki/".
func ArticlePrefix(baseURL string) string {
	if baseURL == "" || strings.HasSuffix(baseURL, "/") {
		return baseURL
	}
	return baseURL + "/"
}

// Name implements Predicate.
func (p ArticlePredicate) Name() string {
	return "article under " + p.prefix + " without namespace"
}

// Allow implements Predicate.
func (p ArticlePredicate) Allow(id model.DocumentID) bool {
	title, ok := strings.CutPrefix(string(id), p.prefix)
	if !ok || title == "" {
		return false
	}
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}
	return !strings.Contains(title, ":")
}

// PatternPredicate rejects or requires URL paths matching glob patterns.
// Ignore patterns win over follow patterns; with no follow patterns every
// path that is not ignored is allowed.
type PatternPredicate struct {
	ignore []string
	follow []string
}

// NewPatternPredicate creates a PatternPredicate.
// Patterns use glob syntax (e.g., "/wiki/List_of_*", "*.pdf").
func NewPatternPredicate(ignore, follow []string) PatternPredicate {
	return PatternPredicate{ignore: ignore, follow: follow}
}

// Name implements Predicate.
func (p PatternPredicate) Name() string {
	var parts []string
	if len(p.ignore) > 0 {
		parts = append(parts, "ignore "+strings.Join(p.ignore, ", "))
	}
	if len(p.follow) > 0 {
		parts = append(parts, "follow "+strings.Join(p.follow, ", "))
	}
	if len(parts) == 0 {
		return "path patterns (none)"
	}
	return "path patterns: " + strings.Join(parts, "; ")
}

// Allow implements Predicate.
func (p PatternPredicate) Allow(id model.DocumentID) bool {
	u, err := url.Parse(string(id))
	if err != nil {
		return false
	}

	urlPath := u.Path
	if urlPath == "" {
		urlPath = "/"
	}

	for _, pattern := range p.ignore {
		if matchPattern(pattern, urlPath) {
			return false
		}
	}

	if len(p.follow) > 0 {
		for _, pattern := range p.follow {
			if matchPattern(pattern, urlPath) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match everything below a directory
//
// Examples:
//   - "/wiki/Talk/*" matches "/wiki/Talk/Tent"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/wiki/List_of_*" matches "/wiki/List_of_rivers"
func matchPattern(pattern, urlPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(urlPath, prefix+"/") || urlPath == prefix {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
		if strings.HasSuffix(urlPath, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, urlPath)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(urlPath))
		if err == nil && matched {
			return true
		}
	}

	return false
}

// PredicateFunc adapts a named function to the Predicate interface.
type PredicateFunc struct {
	// Label is returned by Name.
	Label string

	// Fn decides admission.
	Fn func(model.DocumentID) bool
}

// Name implements Predicate.
func (p PredicateFunc) Name() string {
	return p.Label
}

// Allow implements Predicate.
func (p PredicateFunc) Allow(id model.DocumentID) bool {
	return p.Fn(id)
}

// ResolveDocument turns user input into a DocumentID.
// Absolute URLs are normalized as they are; anything else is treated as
// an article title under baseURL, with spaces turned into underscores.
func ResolveDocument(baseURL, input string) (model.DocumentID, error) {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		return model.NormalizeID("", input)
	}
	title := strings.ReplaceAll(input, " ", "_")
	return model.NormalizeID("", ArticlePrefix(baseURL)+title)
}
