package validator

import (
	"fmt"
	"regexp"

	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/entity"
)

// phonePattern accepts E.164 numbers: a leading plus and 8 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// Validator validates assessment API requests against the role catalog.
type Validator struct {
	catalog *catalog.Catalog
}

func NewAssessmentValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// ValidateInitiate validates InitiateRequest
func (v *Validator) ValidateInitiate(req *entity.InitiateRequest) error {
	if req.WorkerPhone == "" {
		return fmt.Errorf("%w: worker_phone", entity.ErrMissingField)
	}
	if !phonePattern.MatchString(req.WorkerPhone) {
		return fmt.Errorf("%w: worker_phone must be an E.164 number, got %q", entity.ErrInvalidParameter, req.WorkerPhone)
	}
	if req.Role == "" {
		return fmt.Errorf("%w: role", entity.ErrMissingField)
	}

	return v.validateRole(req.Role)
}

// ValidateProcess validates ProcessRequest
func (v *Validator) ValidateProcess(req *entity.ProcessRequest) error {
	if req.Role == "" {
		return fmt.Errorf("%w: role", entity.ErrMissingField)
	}

	return v.validateRole(req.Role)
}

func (v *Validator) validateRole(role string) error {
	if _, ok := v.catalog.Role(role); !ok {
		return fmt.Errorf("%w: %q (known roles: %v)", entity.ErrUnknownRole, role, v.catalog.Roles())
	}
	return nil
}
