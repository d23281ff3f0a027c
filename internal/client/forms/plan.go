package forms

import (
	"strconv"
	"strings"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

const stripePricePrefix = "price_"

// Plan is the add-plan form. Numeric fields hold the raw text typed by
// the operator and are coerced by Model.
type Plan struct {
	Name          string `json:"name" validate:"required,plan_name"`
	EmailLimit    string `json:"emailLimit" validate:"required,non_negative"`
	Price         string `json:"price" validate:"omitempty,non_negative"`
	StripePriceID string `json:"stripePriceId" validate:"omitempty,startswith=price_"`
	Description   string `json:"description"`
}

var planMessages = messages{
	"name.required":            "Plan name and email limit are required.",
	"emailLimit.required":      "Plan name and email limit are required.",
	"name.plan_name":           "Plan name must be lowercase letters and numbers only, no spaces.",
	"emailLimit.non_negative":  "Email limit must be a positive number.",
	"price.non_negative":       "Price must be a positive number.",
	"stripePriceId.startswith": `Stripe Price ID must start with "price_".`,
}

// Validate reports every failed rule. The billing screen shows First.
func (f Plan) Validate() Errors { return run(f, planMessages) }

// Format returns f with every field passed through FormatPlanInput.
func (f Plan) Format() Plan {
	return Plan{
		Name:          FormatPlanInput("name", f.Name),
		EmailLimit:    FormatPlanInput("emailLimit", f.EmailLimit),
		Price:         FormatPlanInput("price", f.Price),
		StripePriceID: FormatPlanInput("stripePriceId", f.StripePriceID),
		Description:   f.Description,
	}
}

// Model converts a valid form into the create payload.
func (f Plan) Model() (models.Plan, error) {
	limit, err := ParseEmailLimit(f.EmailLimit)
	if err != nil {
		return models.Plan{}, err
	}
	var price int
	if p := strings.TrimSpace(f.Price); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return models.Plan{}, apierr.Invalid("Price must be a positive number.")
		}
		price = v
	}
	return models.Plan{
		Name:          f.Name,
		EmailLimit:    limit,
		Price:         price,
		StripePriceID: f.StripePriceID,
		Description:   f.Description,
	}, nil
}

// ParseEmailLimit coerces staged limit text into a number.
func ParseEmailLimit(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, apierr.Invalid("Email limit must be a positive number.")
	}
	return n, nil
}

// FormatPlanInput normalises a plan field as it is typed: names are
// lowercased with whitespace removed and Stripe ids get the price_ prefix.
func FormatPlanInput(field, value string) string {
	switch field {
	case "name":
		return whitespace.ReplaceAllString(strings.ToLower(value), "")
	case "stripePriceId":
		if value == "" || strings.HasPrefix(value, stripePricePrefix) || strings.HasPrefix(value, "price") {
			return value
		}
		return stripePricePrefix + value
	default:
		return value
	}
}
