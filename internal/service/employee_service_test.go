package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func employeeRequest(fillouts ...dto.FilloutInput) *dto.EmployeeRequest {
	return &dto.EmployeeRequest{
		ContactInput: dto.ContactInput{
			NameFirst: "Tom",
			NameLast:  "Leiter",
		},
		Fillouts: fillouts,
	}
}

func TestEmployeeService_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	shirt := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle: "T-Shirt",
		FieldType:       domain.FieldText,
		UseAtEmployee:   true,
	})
	event := f.createEvent(t, nil, nil, shirt.ID)

	employee, err := f.employees.Create(f.ctx, admin, event.ID, employeeRequest(
		dto.FilloutInput{AttributeID: shirt.ID, Value: domain.TextValue("L")},
	))
	require.NoError(t, err)
	assert.Empty(t, employee.Email)
	require.Len(t, employee.Fillouts, 1)

	req := employeeRequest(dto.FilloutInput{AttributeID: shirt.ID, Value: domain.TextValue("XL")})
	req.Email = "tom@example.com"
	updated, err := f.employees.Update(f.ctx, admin, event.ID, employee.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "tom@example.com", updated.Email)
	require.Len(t, updated.Fillouts, 1)
	assert.Equal(t, "XL", *updated.Fillouts[0].Value.Text)

	list, total, err := f.employees.List(f.ctx, event.ID, &dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestEmployeeService_Validation(t *testing.T) {
	f := newFixture(t)
	participantOnly := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Bus",
		FieldType:        domain.FieldBool,
		UseAtParticipant: true,
	})
	event := f.createEvent(t, nil, nil, participantOnly.ID)

	req := employeeRequest(dto.FilloutInput{AttributeID: participantOnly.ID, Value: domain.BoolValue(true)})
	req.NameLast = ""
	req.Email = "no mail"
	_, err := f.employees.Create(f.ctx, admin, event.ID, req)
	require.ErrorIs(t, err, ErrValidation)

	fields := err.(*ValidationError).Fields
	assert.Contains(t, fields, "name_last")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "fillouts."+participantOnly.ID)
}

func TestEmployeeService_DeleteRestore(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	employee, err := f.employees.Create(f.ctx, admin, event.ID, employeeRequest())
	require.NoError(t, err)

	_, err = f.employees.Restore(f.ctx, event.ID, employee.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	require.NoError(t, f.employees.Delete(f.ctx, event.ID, employee.ID))
	_, err = f.employees.Get(f.ctx, event.ID, employee.ID)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, total, err := f.employees.List(f.ctx, event.ID, &dto.ListQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	restored, err := f.employees.Restore(f.ctx, event.ID, employee.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	other := f.createEvent(t, nil, nil)
	_, err = f.employees.Get(f.ctx, other.ID, employee.ID)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}
