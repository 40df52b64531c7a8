package verification

import (
	"context"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Identifier format rules. GSTIN embeds the state code and the holder's
// PAN; CIN embeds listing status, state and registration year.
var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	cinPattern     = regexp.MustCompile(`^[ULF][0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6}$`)
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountPattern = regexp.MustCompile(`^[0-9]{9,18}$`)
)

func newFieldValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return panPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("cin", func(fl validator.FieldLevel) bool {
		return cinPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("bankaccount", func(fl validator.FieldLevel) bool {
		return accountPattern.MatchString(fl.Field().String())
	})
	return v
}

// Evaluator verifies a single identifier field: format validation first,
// then a registry lookup. One attempt per call, no retries.
type Evaluator struct {
	registry RegistryClient
	validate *validator.Validate
	timeout  time.Duration
}

// NewEvaluator creates a field evaluator backed by the given registry.
// A non-positive timeout falls back to the default lookup bound.
func NewEvaluator(registry RegistryClient, timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = defaultRegistryTimeout
	}
	return &Evaluator{
		registry: registry,
		validate: newFieldValidator(),
		timeout:  timeout,
	}
}

// Evaluate verifies one field value. Registry failures degrade into a
// failed result rather than an error; the only returned state is the
// Result itself.
func (e *Evaluator) Evaluate(ctx context.Context, field, value, ifsc string) Result {
	switch field {
	case FieldGST:
		if err := e.validate.Var(value, "gstin"); err != nil {
			return Result{Success: false, Error: "Invalid GST number format"}
		}
		return e.lookup(ctx, func(ctx context.Context) (*RegistryRecord, error) {
			return e.registry.LookupGST(ctx, value)
		})

	case FieldPAN:
		if err := e.validate.Var(value, "pan"); err != nil {
			return Result{Success: false, Error: "Invalid PAN format"}
		}
		return e.lookup(ctx, func(ctx context.Context) (*RegistryRecord, error) {
			return e.registry.LookupPAN(ctx, value)
		})

	case FieldCIN:
		if err := e.validate.Var(value, "cin"); err != nil {
			return Result{Success: false, Error: "Invalid CIN format"}
		}
		return e.lookup(ctx, func(ctx context.Context) (*RegistryRecord, error) {
			return e.registry.LookupCIN(ctx, value)
		})

	case FieldBank:
		if ifsc == "" {
			// Fail before any registry contact
			return Result{Success: false, Error: "IFSC code required"}
		}
		if err := e.validate.Var(value, "bankaccount"); err != nil {
			return Result{Success: false, Error: "Invalid bank account number"}
		}
		if err := e.validate.Var(ifsc, "ifsc"); err != nil {
			return Result{Success: false, Error: "Invalid IFSC code format"}
		}
		return e.lookup(ctx, func(ctx context.Context) (*RegistryRecord, error) {
			return e.registry.LookupBank(ctx, value, ifsc)
		})
	}

	return Result{Success: false, Error: "Invalid verification type"}
}

func (e *Evaluator) lookup(ctx context.Context, fn func(context.Context) (*RegistryRecord, error)) Result {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	record, err := fn(ctx)
	if err != nil {
		return Result{Success: false, Error: "Verification service error"}
	}

	return Result{
		Success: true,
		Data: &FieldData{
			LegalName:  record.LegalName,
			Status:     record.Status,
			BankName:   record.BankName,
			Branch:     record.Branch,
			VerifiedAt: time.Now(),
		},
		Confidence: record.Confidence,
	}
}
