package filter

import (
	"testing"

	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataset() []*matcher.Result {
	rows := []models.Row{
		{"Booking Number": "1", "Pick-up Branch": "Downtown", "Model": "Sedan", "EJAR": "A1", "INVYGO": "A1", "Customer": "Sara Ali"},
		{"Booking Number": "2", "Pick-up Branch": "Downtown", "Model": "SUV", "EJAR": "A2", "INVYGO": "B2"},
		{"Booking Number": "3", "Pick-up Branch": "Downtown", "Model": "Truck", "EJAR": "A3", "INVYGO": "B3"},
		{"Booking Number": "4", "Pick-up Branch": "Airport", "Model": "Sedan", "EJAR": "A4", "INVYGO": "A4"},
		{"Booking Number": "daily 5", "Pick-up Branch": "down town", "Model": "suv", "EJAR": "A5", "INVYGO": "B5"},
	}
	maintenance := []*models.MaintenanceRecord{{Vehicle: "B3", DateIn: "2024-12-01"}}
	return matcher.Reconcile(models.NewAssignmentRecords(rows), maintenance)
}

func bookings(view []*matcher.Result) []string {
	out := make([]string, len(view))
	for i, result := range view {
		out[i] = result.Record.BookingNumber
	}
	return out
}

func TestApply(t *testing.T) {
	full := dataset()

	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "empty state keeps everything",
			state: NewState(),
			want:  []string{"1", "2", "3", "4", "daily 5"},
		},
		{
			name: "facets AND across columns, OR within",
			state: NewState().
				WithFacet(models.ColumnPickupBranch, "downtown").
				WithFacet(models.ColumnModel, "sedan", "suv"),
			want: []string{"1", "2", "daily 5"},
		},
		{
			name:  "facet values are normalized",
			state: NewState().WithFacet(models.ColumnModel, " SU V "),
			want:  []string{"2", "daily 5"},
		},
		{
			name:  "mismatch only",
			state: NewState().WithMismatchOnly(true),
			want:  []string{"2", "3"},
		},
		{
			name:  "ready only",
			state: NewState().WithReadyOnly(true),
			want:  []string{"3"},
		},
		{
			name:  "facet then toggle",
			state: NewState().WithFacet(models.ColumnModel, "suv").WithMismatchOnly(true),
			want:  []string{"2"},
		},
		{
			name:  "search matches any field",
			state: NewState().WithSearch("SARA ali"),
			want:  []string{"1"},
		},
		{
			name: "search ignores facets and toggles",
			state: NewState().
				WithFacet(models.ColumnPickupBranch, "airport").
				WithMismatchOnly(true).
				WithSearch("downtown"),
			want: []string{"1", "2", "3", "daily 5"},
		},
		{
			name:  "blank search falls back to facets",
			state: NewState().WithSearch("   ").WithFacet(models.ColumnPickupBranch, "airport"),
			want:  []string{"4"},
		},
		{
			name:  "no match",
			state: NewState().WithFacet(models.ColumnModel, "van"),
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bookings(Apply(full, tt.state)))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	full := dataset()
	before := bookings(full)

	Apply(full, NewState().WithMismatchOnly(true))
	assert.Equal(t, before, bookings(full))
}

func TestState_Immutable(t *testing.T) {
	base := NewState().WithFacet(models.ColumnModel, "sedan")
	next := base.WithFacet(models.ColumnModel, "suv").WithMismatchOnly(true)

	assert.Equal(t, []string{"sedan"}, base.Facet(models.ColumnModel))
	assert.False(t, base.MismatchOnly())
	assert.Equal(t, []string{"suv"}, next.Facet(models.ColumnModel))
	assert.True(t, next.MismatchOnly())

	values := next.Facet(models.ColumnModel)
	values[0] = "changed"
	assert.Equal(t, []string{"suv"}, next.Facet(models.ColumnModel))
}

func TestState_WithFacet(t *testing.T) {
	state := NewState().WithFacet(models.ColumnModel, "Sedan", "sedan", "", "  ")
	assert.Equal(t, []string{"sedan"}, state.Facet(models.ColumnModel))

	cleared := state.WithFacet(models.ColumnModel)
	assert.Nil(t, cleared.Facet(models.ColumnModel))
	assert.Empty(t, cleared.FacetColumns())
}

func TestState_Reset(t *testing.T) {
	state := NewState().
		WithSearch("x").
		WithFacet(models.ColumnModel, "sedan").
		WithMismatchOnly(true).
		WithReadyOnly(true).
		WithSelectedDate("2024-12-31")

	reset := state.Reset()
	assert.Equal(t, "", reset.Search())
	assert.Empty(t, reset.FacetColumns())
	assert.False(t, reset.MismatchOnly())
	assert.False(t, reset.ReadyOnly())
	assert.Equal(t, models.CalendarKey("2024-12-31"), reset.SelectedDate())
}

func TestFacetOptions(t *testing.T) {
	full := dataset()
	options := FacetOptions(full, []models.Column{models.ColumnPickupBranch, models.ColumnModel, models.ColumnDateOut})

	require.Len(t, options, 3)
	assert.Equal(t, []string{"airport", "downtown"}, options[models.ColumnPickupBranch])
	assert.Equal(t, []string{"sedan", "suv", "truck"}, options[models.ColumnModel])
	assert.Empty(t, options[models.ColumnDateOut])
}
