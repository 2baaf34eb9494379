// Package pricing computes the estimated price of an order from the pricing
// definition of a service and the customer's selection.
//
// A service carries exactly one pricing scheme, chosen by its pricing model:
//
//   - fixedPackageWithAddons: a base price plus optional named add-ons
//   - multiCategoryOptions: one optional choice per category, summed
//   - singleOption: exactly one option out of a priced list
//
// Everything here is pure: no I/O, no logging, no rounding.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"lavanderia/internal/models"
)

var (
	ErrUnsupportedPricingModel = errors.New("unsupported pricing model")
	ErrInvalidPricing          = errors.New("invalid pricing definition")
	ErrInvalidSelection        = errors.New("invalid selection")
	ErrMissingOption           = fmt.Errorf("%w: an option must be selected", ErrInvalidSelection)
	ErrInvalidOption           = fmt.Errorf("%w: option is not offered by the service", ErrInvalidSelection)
)

// Scheme is one variant of the pricing tagged union. The set of variants is
// closed: only the types declared in this package implement it.
type Scheme interface {
	Model() models.PricingModel
	Validate() error
	price(sel models.Selection) (decimal.Decimal, error)
	normalize()
}

// FixedPackageWithAddons prices a base package plus any selected add-ons.
type FixedPackageWithAddons struct {
	BasePrice    decimal.Decimal            `json:"base_price"`
	Addons       map[string]decimal.Decimal `json:"addons,omitempty"`
	MinimumUnits int                        `json:"minimum_units,omitempty"`
}

// MultiCategoryOptions maps category -> option -> price.
type MultiCategoryOptions struct {
	Options map[string]map[string]decimal.Decimal `json:"options"`
}

// SingleOption maps option -> price.
type SingleOption struct {
	Options map[string]decimal.Decimal `json:"options"`
}

func (*FixedPackageWithAddons) Model() models.PricingModel { return models.PricingFixedPackageWithAddons }
func (*MultiCategoryOptions) Model() models.PricingModel   { return models.PricingMultiCategoryOptions }
func (*SingleOption) Model() models.PricingModel           { return models.PricingSingleOption }

// Unknown add-on names are ignored rather than rejected.
func (s *FixedPackageWithAddons) price(sel models.Selection) (decimal.Decimal, error) {
	total := s.BasePrice
	for _, name := range sel.Addons {
		if p, ok := s.Addons[strings.ToLower(name)]; ok {
			total = total.Add(p)
		}
	}
	return total, nil
}

func (s *MultiCategoryOptions) price(sel models.Selection) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, category := range sortedKeys(s.Options) {
		choice, ok := sel.Choices[category]
		if !ok || choice == "" {
			continue
		}
		p, ok := s.Options[category][choice]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %q in category %q", ErrInvalidOption, choice, category)
		}
		total = total.Add(p)
	}
	return total, nil
}

func (s *SingleOption) price(sel models.Selection) (decimal.Decimal, error) {
	if sel.Option == "" {
		return decimal.Zero, ErrMissingOption
	}
	p, ok := s.Options[sel.Option]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOption, sel.Option)
	}
	return p, nil
}

func (s *FixedPackageWithAddons) Validate() error {
	if s.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base_price must not be negative", ErrInvalidPricing)
	}
	if s.MinimumUnits < 0 {
		return fmt.Errorf("%w: minimum_units must not be negative", ErrInvalidPricing)
	}
	return validateLeaves("addons", s.Addons, true)
}

func (s *MultiCategoryOptions) Validate() error {
	if len(s.Options) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidPricing)
	}
	for category, opts := range s.Options {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: empty category name", ErrInvalidPricing)
		}
		if err := validateLeaves(category, opts, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *SingleOption) Validate() error {
	return validateLeaves("options", s.Options, false)
}

func (s *FixedPackageWithAddons) normalize() {
	if len(s.Addons) == 0 {
		return
	}
	addons := make(map[string]decimal.Decimal, len(s.Addons))
	for name, p := range s.Addons {
		addons[strings.ToLower(name)] = p
	}
	s.Addons = addons
}

func (s *MultiCategoryOptions) normalize() {}
func (s *SingleOption) normalize()         {}

func validateLeaves(field string, leaves map[string]decimal.Decimal, allowEmpty bool) error {
	if len(leaves) == 0 && !allowEmpty {
		return fmt.Errorf("%w: %s needs at least one option", ErrInvalidPricing, field)
	}
	for name, p := range leaves {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: %s has an empty option name", ErrInvalidPricing, field)
		}
		if p.IsNegative() {
			return fmt.Errorf("%w: %s.%s must not be negative", ErrInvalidPricing, field, name)
		}
	}
	return nil
}

// Parse decodes a raw pricing payload for the given model.
func Parse(model models.PricingModel, raw []byte) (Scheme, error) {
	var scheme Scheme
	switch model {
	case models.PricingFixedPackageWithAddons:
		scheme = &FixedPackageWithAddons{}
	case models.PricingMultiCategoryOptions:
		scheme = &MultiCategoryOptions{}
	case models.PricingSingleOption:
		scheme = &SingleOption{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPricingModel, model)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing pricing payload", ErrInvalidPricing)
	}
	if err := json.Unmarshal(raw, scheme); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPricing, err)
	}
	scheme.normalize()
	return scheme, nil
}

// Decode returns the pricing scheme stored on a service.
func Decode(svc *models.Service) (Scheme, error) {
	return Parse(svc.PricingModel, svc.Pricing)
}

// Encode validates a scheme and renders the payload stored on a service.
func Encode(scheme Scheme) (models.PricingModel, datatypes.JSON, error) {
	scheme.normalize()
	if err := scheme.Validate(); err != nil {
		return "", nil, err
	}
	raw, err := json.Marshal(scheme)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode pricing: %w", err)
	}
	return scheme.Model(), datatypes.JSON(raw), nil
}

// Compute returns the price of sel against the live pricing of svc.
func Compute(svc *models.Service, sel models.Selection) (decimal.Decimal, error) {
	scheme, err := Decode(svc)
	if err != nil {
		return decimal.Zero, err
	}
	return scheme.price(sel)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
