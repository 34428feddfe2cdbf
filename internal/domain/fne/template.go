package fne

import (
	"fmt"
	"strings"

	"github.com/fnev4/fnev4/internal/domain/entity"
)

// WalkInClientCode is the Sage 100 code reserved for occasional customers
// ("CLIENT DIVERS"). It never has to exist in the clients table.
const WalkInClientCode = "1999"

// DefaultCurrency is the local currency (franc CFA).
const DefaultCurrency = "XOF"

// IsWalkIn reports whether code designates the walk-in customer.
func IsWalkIn(code string) bool {
	return strings.TrimSpace(code) == WalkInClientCode
}

// Templates lists the DGI billing templates.
var Templates = []string{entity.TemplateB2B, entity.TemplateB2C, entity.TemplateB2G, entity.TemplateB2F}

// governmentKeywords are matched against the folded client name.
var governmentKeywords = []string{
	"ministere",
	"direction generale",
	"prefecture",
	"sous prefecture",
	"mairie",
	"ambassade",
	"etat de",
	"tresor",
	"conseil regional",
	"assemblee nationale",
	"presidence",
}

// localAddressMarkers identify a Côte d'Ivoire address once folded.
var localAddressMarkers = []string{
	"cote d ivoire",
	"cote divoire",
	"ivory coast",
	"abidjan",
	"yamoussoukro",
	"bouake",
}

// ClientFields is the subset of a client record the DGI rules look at.
type ClientFields struct {
	Code     string
	Name     string
	NCC      string
	Template string
	Currency string
	Address  string
}

// NormalizeTemplate accepts "b2b", "B to B", "BTOB" and returns the
// canonical template, or "" when text is not a template.
func NormalizeTemplate(text string) string {
	key := strings.ToUpper(strings.ReplaceAll(foldKey(text), " ", ""))
	key = strings.Replace(key, "TO", "2", 1)
	for _, t := range Templates {
		if key == t {
			return t
		}
	}
	return ""
}

// InferTemplate guesses the billing template of a client row whose template
// cell is blank.
func InferTemplate(f ClientFields) string {
	if IsWalkIn(f.Code) {
		return entity.TemplateB2C
	}

	name := " " + foldKey(f.Name) + " "
	for _, kw := range governmentKeywords {
		if strings.Contains(name, " "+kw+" ") {
			return entity.TemplateB2G
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency != "" && currency != DefaultCurrency {
		return entity.TemplateB2F
	}

	if strings.TrimSpace(f.NCC) != "" {
		return entity.TemplateB2B
	}
	return entity.TemplateB2C
}

// IsLocalAddress reports whether address points to Côte d'Ivoire.
func IsLocalAddress(address string) bool {
	key := " " + foldKey(address) + " "
	for _, m := range localAddressMarkers {
		if strings.Contains(key, " "+m+" ") {
			return true
		}
	}
	return false
}

// ValidateClientTemplate checks a client against the DGI template rules and
// returns every violation found. f.Template must already be resolved.
func ValidateClientTemplate(f ClientFields) []string {
	var violations []string

	if strings.TrimSpace(f.Code) == "" {
		violations = append(violations, "client code is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		violations = append(violations, "client name is required")
	}

	ncc := strings.TrimSpace(f.NCC)

	switch f.Template {
	case entity.TemplateB2B, entity.TemplateB2G:
		if ncc == "" {
			violations = append(violations, fmt.Sprintf("NCC is required for template %s", f.Template))
		} else if !ValidNcc(ncc) {
			violations = append(violations, fmt.Sprintf("NCC %q must be 8 to 11 alphanumeric characters", ncc))
		}
	case entity.TemplateB2C:
		if ncc != "" {
			violations = append(violations, "NCC must be empty for template B2C")
		}
	case entity.TemplateB2F:
		if ncc == "" {
			violations = append(violations, "NCC (international identifier) is required for template B2F")
		} else if !ValidNcc(ncc) {
			violations = append(violations, fmt.Sprintf("NCC %q must be 8 to 11 alphanumeric characters", ncc))
		}
		currency := strings.ToUpper(strings.TrimSpace(f.Currency))
		if currency == "" || currency == DefaultCurrency {
			violations = append(violations, "a foreign currency (not XOF) is required for template B2F")
		}
		if strings.TrimSpace(f.Address) == "" {
			violations = append(violations, "an address is required for template B2F")
		} else if IsLocalAddress(f.Address) {
			violations = append(violations, "the address of a B2F client must be outside Côte d'Ivoire")
		}
	default:
		violations = append(violations, fmt.Sprintf("unknown template %q (expected B2B, B2C, B2G or B2F)", f.Template))
	}

	return violations
}
