package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+79\d{9}$`)

// MaxOrderTotal is the largest value orders.fixed_total_price can hold.
var MaxOrderTotal = decimal.RequireFromString("99999999.99")

// ValidPhone reports whether s is a +79XXXXXXXXX number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// OrderRequest is the raw POST /order payload.
type OrderRequest struct {
	FirstName   string        `json:"firstname" validate:"required,max=100"`
	LastName    string        `json:"lastname" validate:"required,max=100"`
	PhoneNumber string        `json:"phonenumber" validate:"required,phone"`
	Address     string        `json:"address" validate:"required,max=255"`
	Products    []ProductLine `json:"products" validate:"required,min=1,unique=Product,dive"`
}

type ProductLine struct {
	Product  int `json:"product" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"gt=0,max=2147483647"`
}

// ValidatedOrder is produced only by Validator.ValidateOrder and carries
// the products as they were found in the catalog.
type ValidatedOrder struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	Lines       []ValidatedLine
}

type ValidatedLine struct {
	Product  models.Product
	Quantity int
}

func (o *ValidatedOrder) ProductIDs() []int {
	ids := make([]int, 0, len(o.Lines))
	for _, line := range o.Lines {
		ids = append(ids, line.Product.ProductID)
	}
	return ids
}

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error)
}

type Validator struct {
	validate *validator.Validate
	products ProductLookup
}

func New(products ProductLookup) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v, products: products}
}

// DecodeOrder parses a request body. Type mismatches are reported as field
// errors, not as malformed JSON.
func DecodeOrder(r io.Reader) (OrderRequest, error) {
	var req OrderRequest

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &typeErr):
			return req, Errors{{Field: typeErr.Field, Message: "expected " + describeKind(typeErr.Type)}}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return req, Errors{{Field: "body", Message: "malformed JSON"}}
		case errors.Is(err, io.EOF):
			return req, Errors{{Field: "body", Message: "request body is empty"}}
		default:
			return req, Errors{{Field: "body", Message: err.Error()}}
		}
	}

	return req, nil
}

func describeKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Slice:
		return "a list"
	case reflect.Struct:
		return "an object"
	default:
		return t.String()
	}
}

// ValidateOrder checks field rules first and catalog existence last. It
// returns Errors for invalid input and a plain error when the lookup fails.
func (v *Validator) ValidateOrder(ctx context.Context, req OrderRequest) (*ValidatedOrder, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Address = strings.TrimSpace(req.Address)

	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fromValidator(verrs)
		}
		return nil, fmt.Errorf("validate order: %w", err)
	}

	ids := make([]int, 0, len(req.Products))
	for _, line := range req.Products {
		ids = append(ids, line.Product)
	}

	found, err := v.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up products: %w", err)
	}

	var missing []int
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		errs := make(Errors, 0, len(missing))
		for _, id := range missing {
			errs = append(errs, FieldError{Field: "products", Message: fmt.Sprintf("product %d does not exist", id)})
		}
		return nil, errs
	}

	total := decimal.Zero
	for _, line := range req.Products {
		total = total.Add(found[line.Product].Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if total.GreaterThan(MaxOrderTotal) {
		return nil, Errors{{Field: "products", Message: "order total exceeds " + MaxOrderTotal.StringFixed(2)}}
	}

	out := &ValidatedOrder{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Lines:       make([]ValidatedLine, 0, len(req.Products)),
	}
	for _, line := range req.Products {
		out.Lines = append(out.Lines, ValidatedLine{Product: found[line.Product], Quantity: line.Quantity})
	}

	return out, nil
}

func fromValidator(verrs validator.ValidationErrors) Errors {
	errs := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		errs = append(errs, FieldError{Field: field, Message: message(fe)})
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "this list cannot be empty"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Int {
			return "must be at most " + fe.Param()
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return "must be a positive integer"
	case "unique":
		return "duplicate products are not allowed"
	case "phone":
		return "invalid phone number, expected format +79XXXXXXXXX"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
