package extract

import (
	"regexp"
	"sort"

	"github.com/spigell/networkiq/internal/background"
)

// term is one vocabulary entry matched on word boundaries.
type term struct {
	re    *regexp.Regexp
	value string
}

// vocabulary entries map a spelling to the value stored on the element.
type entry struct {
	spelling string
	value    string
}

var companies = compileTerms([]entry{
	{"google", "google"},
	{"alphabet", "alphabet"},
	{"meta", "meta"},
	{"facebook", "facebook"},
	{"amazon", "amazon"},
	{"apple", "apple"},
	{"microsoft", "microsoft"},
	{"openai", "openai"},
	{"anthropic", "anthropic"},
	{"tesla", "tesla"},
	{"spacex", "spacex"},
	{"uber", "uber"},
	{"airbnb", "airbnb"},
	{"stripe", "stripe"},
	{"coinbase", "coinbase"},
	{"dropbox", "dropbox"},
	{"slack", "slack"},
	{"zoom", "zoom"},
	{"oracle", "oracle"},
	{"ibm", "ibm"},
	{"intel", "intel"},
	{"nvidia", "nvidia"},
	{"amd", "amd"},
	{"salesforce", "salesforce"},
	{"adobe", "adobe"},
	{"c3.ai", "c3.ai"},
	{"c3 ai", "c3.ai"},
	{"palantir", "palantir"},
	{"databricks", "databricks"},
	{"snowflake", "snowflake"},
	{"netflix", "netflix"},
	{"linkedin", "linkedin"},
	{"lockheed martin", "lockheed martin"},
	{"boeing", "boeing"},
	{"raytheon", "raytheon"},
	{"northrop grumman", "northrop grumman"},
	{"deloitte", "deloitte"},
	{"mckinsey", "mckinsey"},
	{"accenture", "accenture"},
	{"goldman sachs", "goldman sachs"},
	{"jpmorgan", "jpmorgan"},
})

var skills = compileTerms(values(
	// languages
	"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "golang", "rust",
	"swift", "kotlin", "scala",
	// frameworks
	"react", "angular", "vue", "django", "flask", "fastapi", "spring boot", "node.js", "nodejs",
	"express.js", "rails", "laravel", "tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
	// cloud and devops
	"aws", "azure", "gcp", "google cloud", "kubernetes", "docker", "terraform", "jenkins",
	"gitlab", "github", "ci/cd",
	// databases
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch", "cassandra", "dynamodb",
	"firebase",
))

var certifications = compileTerms(values(
	"aws certified", "azure certified", "google certified", "pmp", "cissp", "ccna", "ccnp",
	"comptia", "scrum master", "six sigma", "itil", "cpa", "cfa", "cka",
))

// industryKeywords outrank roleKeywords when keywords are capped.
var industryKeywords = compileTerms(values(
	"fintech", "healthtech", "edtech", "biotech", "cleantech", "saas", "b2b", "b2c",
	"marketplace", "ai", "machine learning", "data science", "analytics", "blockchain",
	"crypto", "web3", "defi",
))

var roleKeywords = compileTerms(values(
	"engineer", "developer", "architect", "manager", "director", "analyst", "scientist",
	"designer", "consultant", "founder", "ceo", "cto",
))

// militaryBranches maps branch spellings to the stored branch name.
var militaryBranches = compileTerms([]entry{
	{"air force", "air force"},
	{"usaf", "air force"},
	{"army", "army"},
	{"navy", "navy"},
	{"usn", "navy"},
	{"marine corps", "marine corps"},
	{"marines", "marine corps"},
	{"usmc", "marine corps"},
	{"coast guard", "coast guard"},
	{"uscg", "coast guard"},
	{"space force", "space force"},
	{"national guard", "national guard"},
})

// serviceIndicators signal service without naming a branch.
var serviceIndicators = compileTerms(values(
	"veteran", "military service", "active duty", "enlisted", "sergeant", "lieutenant",
	"colonel", "deployed", "deployment",
))

// academies are matched before branches; an academy hit suppresses branch hits.
var academies = func() []term {
	aliases := background.AcademyAliases()
	entries := make([]entry, 0, len(aliases))
	for spelling, code := range aliases {
		entries = append(entries, entry{spelling: spelling, value: code})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].spelling < entries[j].spelling })
	return compileTerms(entries)
}()

var militaryNegations = []string{
	"no military",
	"not military",
	"non-military",
	"without military",
	"never served",
	"did not serve",
}

var states = compileTerms(values(
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado", "connecticut",
	"delaware", "florida", "georgia", "hawaii", "idaho", "illinois", "indiana", "iowa",
	"kansas", "kentucky", "louisiana", "maine", "maryland", "massachusetts", "michigan",
	"minnesota", "mississippi", "missouri", "montana", "nebraska", "nevada", "new hampshire",
	"new jersey", "new mexico", "new york", "north carolina", "north dakota", "ohio", "oklahoma",
	"oregon", "pennsylvania", "rhode island", "south carolina", "south dakota", "tennessee",
	"texas", "utah", "vermont", "virginia", "washington", "west virginia", "wisconsin", "wyoming",
))

var achievementMarkers = []string{
	"award", "dean's list", "patent", "published", "honor", "scholarship", "fellowship",
}

func values(words ...string) []entry {
	out := make([]entry, 0, len(words))
	for _, w := range words {
		out = append(out, entry{spelling: w, value: w})
	}
	return out
}

func compileTerms(entries []entry) []term {
	out := make([]term, 0, len(entries))
	for _, e := range entries {
		out = append(out, term{re: boundary(e.spelling), value: e.value})
	}
	return out
}

// boundary matches word on token edges, treating + and # as word characters.
func boundary(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9+#])` + regexp.QuoteMeta(word) + `(?:$|[^a-z0-9+#])`)
}

func (t term) in(text string) bool {
	return t.re.MatchString(text)
}
