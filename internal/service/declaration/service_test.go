package declaration

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// authedContext builds a context carrying verified JWT claims, the same
// shape the Verifier middleware installs on real requests.
func authedContext(t *testing.T, companyID, userID string) context.Context {
	t.Helper()

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"company_id": companyID,
		"user_id":    userID,
		"role":       "admin",
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

// fakeDeclarationRepo satisfies declaration.TaxDeclarationRepository with
// overridable behavior per method.
type fakeDeclarationRepo struct {
	createFn         func(ctx context.Context, d declaration.TaxDeclaration) (declaration.TaxDeclaration, error)
	getByIDFn        func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error)
	updateSectionsFn func(ctx context.Context, companyID string, d declaration.TaxDeclaration) error
	updateStatusFn   func(ctx context.Context, companyID string, d declaration.TaxDeclaration) error
}

func (f *fakeDeclarationRepo) Create(ctx context.Context, decl declaration.TaxDeclaration) (declaration.TaxDeclaration, error) {
	if f.createFn != nil {
		return f.createFn(ctx, decl)
	}
	decl.ID = "decl-1"
	return decl, nil
}

func (f *fakeDeclarationRepo) GetByID(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id, companyID)
	}
	return declaration.TaxDeclaration{}, declaration.ErrDeclarationNotFound
}

func (f *fakeDeclarationRepo) GetByEmployeeAndYear(ctx context.Context, employeeID, financialYear, companyID string) (declaration.TaxDeclaration, error) {
	return declaration.TaxDeclaration{}, declaration.ErrDeclarationNotFound
}

func (f *fakeDeclarationRepo) ListVerifiedByCompanyAndYear(ctx context.Context, companyID, financialYear string) ([]declaration.TaxDeclaration, error) {
	return nil, nil
}

func (f *fakeDeclarationRepo) UpdateSections(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
	if f.updateSectionsFn != nil {
		return f.updateSectionsFn(ctx, companyID, decl)
	}
	return nil
}

func (f *fakeDeclarationRepo) UpdateStatus(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, companyID, decl)
	}
	return nil
}

type fakeEmployeeRepo struct {
	getByIDFn func(ctx context.Context, id, companyID string) (employee.Employee, error)
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	return newEmployee, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id, companyID string) (employee.Employee, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id, companyID)
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListByCompanyID(ctx context.Context, companyID string, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

func (f *fakeEmployeeRepo) ListActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, companyID string, req employee.UpdateEmployeeRequest) error {
	return nil
}

func activeEmployee() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (employee.Employee, error) {
			return employee.Employee{ID: id, CompanyID: companyID, Status: employee.EmployeeStatusActive}, nil
		},
	}
}

func serviceWith(declRepo declaration.TaxDeclarationRepository, employeeRepo employee.EmployeeRepository) *TaxDeclarationServiceImpl {
	return &TaxDeclarationServiceImpl{
		declRepo:     declRepo,
		employeeRepo: employeeRepo,
	}
}

func storedDeclaration(status declaration.DeclarationStatus) declaration.TaxDeclaration {
	return declaration.TaxDeclaration{
		ID:            "decl-1",
		EmployeeID:    "emp-1",
		CompanyID:     "co-1",
		FinancialYear: "2025-2026",
		Status:        status,
		Sections: map[taxconfig.SectionKey]declaration.DeclarationSection{
			taxconfig.Section80C: {Items: map[string]decimal.Decimal{"PPF": d("60000")}},
		},
	}
}

// ========== CREATE ==========

func TestCreate_StartsAsDraft(t *testing.T) {
	t.Parallel()

	var created declaration.TaxDeclaration
	declRepo := &fakeDeclarationRepo{
		createFn: func(ctx context.Context, decl declaration.TaxDeclaration) (declaration.TaxDeclaration, error) {
			decl.ID = "decl-1"
			created = decl
			return decl, nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	resp, err := svc.Create(authedContext(t, "co-1", "user-1"), declaration.CreateTaxDeclarationRequest{
		EmployeeID:    "emp-1",
		FinancialYear: "2025-2026",
		Sections: map[string]map[string]decimal.Decimal{
			"section80C": {"PPF": d("60000"), "ELSS": d("40000")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, declaration.DeclarationStatusDraft, created.Status)
	assert.Equal(t, "co-1", created.CompanyID)
	assert.Equal(t, string(declaration.DeclarationStatusDraft), resp.Status)
	assert.True(t, resp.Sections["section80C"].DeclaredAmount.Equal(d("100000")),
		"declared amount should sum the section items, got %s", resp.Sections["section80C"].DeclaredAmount)
}

func TestCreate_UnknownEmployeeRejected(t *testing.T) {
	t.Parallel()

	svc := serviceWith(&fakeDeclarationRepo{}, &fakeEmployeeRepo{})

	_, err := svc.Create(authedContext(t, "co-1", "user-1"), declaration.CreateTaxDeclarationRequest{
		EmployeeID:    "emp-missing",
		FinancialYear: "2025-2026",
		Sections: map[string]map[string]decimal.Decimal{
			"section80C": {"PPF": d("60000")},
		},
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCreate_UnknownSectionKeyFailsValidation(t *testing.T) {
	t.Parallel()

	svc := serviceWith(&fakeDeclarationRepo{}, activeEmployee())

	_, err := svc.Create(authedContext(t, "co-1", "user-1"), declaration.CreateTaxDeclarationRequest{
		EmployeeID:    "emp-1",
		FinancialYear: "2025-2026",
		Sections: map[string]map[string]decimal.Decimal{
			"section99Z": {"mystery": d("1000")},
		},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "sections.section99Z")
}

// ========== DRAFT EDITS ==========

func TestUpdateDraft_ReplacesSections(t *testing.T) {
	t.Parallel()

	var updated declaration.TaxDeclaration
	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusDraft), nil
		},
		updateSectionsFn: func(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
			updated = decl
			return nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	resp, err := svc.UpdateDraft(authedContext(t, "co-1", "user-1"), declaration.UpdateTaxDeclarationRequest{
		ID: "decl-1",
		Sections: map[string]map[string]decimal.Decimal{
			"section80D": {"health insurance premium": d("25000")},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, updated.Sections, taxconfig.Section80C, "old sections should be replaced, not merged")
	assert.Contains(t, updated.Sections, taxconfig.Section80D)
	assert.True(t, resp.Sections["section80D"].DeclaredAmount.Equal(d("25000")))
}

func TestUpdateDraft_RejectedReturnsToDraft(t *testing.T) {
	t.Parallel()

	reason := "receipts missing"
	var updated declaration.TaxDeclaration
	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			rejected := storedDeclaration(declaration.DeclarationStatusRejected)
			rejected.RejectionReason = &reason
			return rejected, nil
		},
		updateSectionsFn: func(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
			updated = decl
			return nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	_, err := svc.UpdateDraft(authedContext(t, "co-1", "user-1"), declaration.UpdateTaxDeclarationRequest{
		ID: "decl-1",
		Sections: map[string]map[string]decimal.Decimal{
			"section80C": {"PPF": d("80000")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, declaration.DeclarationStatusDraft, updated.Status)
	assert.Nil(t, updated.RejectionReason)
}

func TestUpdateDraft_SubmittedIsImmutable(t *testing.T) {
	t.Parallel()

	for _, status := range []declaration.DeclarationStatus{
		declaration.DeclarationStatusSubmitted,
		declaration.DeclarationStatusVerified,
	} {
		declRepo := &fakeDeclarationRepo{
			getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
				return storedDeclaration(status), nil
			},
		}
		svc := serviceWith(declRepo, activeEmployee())

		_, err := svc.UpdateDraft(authedContext(t, "co-1", "user-1"), declaration.UpdateTaxDeclarationRequest{
			ID: "decl-1",
			Sections: map[string]map[string]decimal.Decimal{
				"section80C": {"PPF": d("80000")},
			},
		})
		assert.ErrorIs(t, err, declaration.ErrDeclarationNotDraft, "status %s", status)
	}
}

// ========== SUBMIT ==========

func TestSubmit_SetsSubmittedAt(t *testing.T) {
	t.Parallel()

	var updated declaration.TaxDeclaration
	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusDraft), nil
		},
		updateStatusFn: func(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
			updated = decl
			return nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	resp, err := svc.Submit(authedContext(t, "co-1", "user-1"), "decl-1")
	require.NoError(t, err)

	assert.Equal(t, declaration.DeclarationStatusSubmitted, updated.Status)
	require.NotNil(t, updated.SubmittedAt)
	assert.Equal(t, string(declaration.DeclarationStatusSubmitted), resp.Status)
}

func TestSubmit_ResubmitRejected(t *testing.T) {
	t.Parallel()

	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusSubmitted), nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	_, err := svc.Submit(authedContext(t, "co-1", "user-1"), "decl-1")
	assert.ErrorIs(t, err, declaration.ErrDeclarationNotDraft)
}

func TestSubmit_MissingClaims(t *testing.T) {
	t.Parallel()

	svc := serviceWith(&fakeDeclarationRepo{}, activeEmployee())

	_, err := svc.Submit(context.Background(), "decl-1")
	assert.Error(t, err)
}

// ========== VERIFY / REJECT ==========

func TestVerify_RequiresSubmitted(t *testing.T) {
	t.Parallel()

	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusDraft), nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	_, err := svc.Verify(authedContext(t, "co-1", "admin-1"), declaration.VerifyTaxDeclarationRequest{
		ID:              "decl-1",
		VerifiedAmounts: map[string]decimal.Decimal{"section80C": d("50000")},
	})
	assert.ErrorIs(t, err, declaration.ErrDeclarationNotSubmitted)
}

func TestVerify_UndeclaredSectionRejected(t *testing.T) {
	t.Parallel()

	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusSubmitted), nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	_, err := svc.Verify(authedContext(t, "co-1", "admin-1"), declaration.VerifyTaxDeclarationRequest{
		ID:              "decl-1",
		VerifiedAmounts: map[string]decimal.Decimal{"section80D": d("20000")},
	})
	assert.ErrorIs(t, err, declaration.ErrUnknownDeclaredSection)
}

func TestReject_RequiresSubmitted(t *testing.T) {
	t.Parallel()

	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusVerified), nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	_, err := svc.Reject(authedContext(t, "co-1", "admin-1"), declaration.RejectTaxDeclarationRequest{
		ID:     "decl-1",
		Reason: "amounts do not match proofs",
	})
	assert.ErrorIs(t, err, declaration.ErrDeclarationNotSubmitted)
}

func TestReject_RecordsReason(t *testing.T) {
	t.Parallel()

	var updated declaration.TaxDeclaration
	declRepo := &fakeDeclarationRepo{
		getByIDFn: func(ctx context.Context, id, companyID string) (declaration.TaxDeclaration, error) {
			return storedDeclaration(declaration.DeclarationStatusSubmitted), nil
		},
		updateStatusFn: func(ctx context.Context, companyID string, decl declaration.TaxDeclaration) error {
			updated = decl
			return nil
		},
	}
	svc := serviceWith(declRepo, activeEmployee())

	resp, err := svc.Reject(authedContext(t, "co-1", "admin-1"), declaration.RejectTaxDeclarationRequest{
		ID:     "decl-1",
		Reason: "amounts do not match proofs",
	})
	require.NoError(t, err)

	assert.Equal(t, declaration.DeclarationStatusRejected, updated.Status)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "amounts do not match proofs", *updated.RejectionReason)
	assert.Equal(t, string(declaration.DeclarationStatusRejected), resp.Status)
}
