package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to open dry-run db: %v", err)
	}
	return db
}

func pagedSQL(t *testing.T, db *gorm.DB, predicates []entity.Predicate, limit, offset int) string {
	t.Helper()
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		query, err := applyPredicates(tx.Model(&ReconciliationRecords{}), predicates)
		if err != nil {
			t.Fatalf("applyPredicates returned error: %v", err)
		}
		var rows []ReconciliationRecords
		return query.Order("seq ASC").Limit(limit).Offset(offset).Find(&rows)
	})
}

func TestFindPagedSQL(t *testing.T) {
	db := newDryRunDB(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		predicates []entity.Predicate
		want       []string
		notWant    []string
	}{
		{
			name:    "no predicates",
			want:    []string{`FROM "reconciliation_records"`, "ORDER BY seq ASC", "LIMIT 10 OFFSET 20"},
			notWant: []string{"WHERE"},
		},
		{
			name:       "matched bucket",
			predicates: []entity.Predicate{entity.BucketPredicate{Bucket: entity.BucketMatched}},
			want:       []string{"air = 'Yes' AND cat = 'Yes'"},
		},
		{
			name:       "discrepancies bucket",
			predicates: []entity.Predicate{entity.BucketPredicate{Bucket: entity.BucketDiscrepancies}},
			want:       []string{"air = 'Yes' AND cat = 'Yes'", "dif_qty = 'Yes' OR dif_price = 'Yes'"},
		},
		{
			name:       "air only bucket",
			predicates: []entity.Predicate{entity.BucketPredicate{Bucket: entity.BucketAirOnly}},
			want:       []string{"air = 'Yes' AND cat = 'No'"},
		},
		{
			name:       "cat only bucket",
			predicates: []entity.Predicate{entity.BucketPredicate{Bucket: entity.BucketCatOnly}},
			want:       []string{"air = 'No' AND cat = 'Yes'"},
		},
		{
			name:       "closed date range",
			predicates: []entity.Predicate{entity.DateRangePredicate{From: &from, To: &to}},
			want:       []string{"air_flight_date >= '2024-01-01'", "air_flight_date <= '2024-01-31'"},
		},
		{
			name:       "open ended date range",
			predicates: []entity.Predicate{entity.DateRangePredicate{From: &from}},
			want:       []string{"air_flight_date >= '2024-01-01'"},
			notWant:    []string{"air_flight_date <="},
		},
		{
			name: "all filters combine",
			predicates: []entity.Predicate{
				entity.BucketPredicate{Bucket: entity.BucketQtyDiscrepancy},
				entity.DateRangePredicate{From: &from, To: &to},
				entity.FlightPredicate{FlightNumber: "GA123"},
				entity.ItemPredicate{Substring: "Meal"},
			},
			want: []string{
				"dif_qty = 'Yes'",
				"air_flight_date >= '2024-01-01'",
				"air_flight_number = 'GA123'",
				"cat_item_description LIKE '%Meal%'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := pagedSQL(t, db, tt.predicates, 10, 20)
			for _, want := range tt.want {
				if !strings.Contains(sql, want) {
					t.Errorf("expected SQL to contain %q, got %s", want, sql)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(sql, notWant) {
					t.Errorf("expected SQL not to contain %q, got %s", notWant, sql)
				}
			}
		})
	}
}

type unknownPredicate struct{}

func (unknownPredicate) Matches(*entity.ReconciliationRecord) bool { return true }

func TestApplyPredicatesRejectsUnknown(t *testing.T) {
	db := newDryRunDB(t)
	_, err := applyPredicates(db, []entity.Predicate{unknownPredicate{}})
	if !errors.Is(err, repository.ErrUnsupportedPredicate) {
		t.Fatalf("expected ErrUnsupportedPredicate, got %v", err)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chicken", "Chicken"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\x`, `c:\\x`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroupDifferences(t *testing.T) {
	records := []*entity.ReconciliationRecord{
		{ID: "a", DifQty: "No", DifPrice: "No", QtyDif: "0", AmountDif: "0.00"},
		{ID: "b", DifQty: "Yes", DifPrice: "Yes", QtyDif: "2", AmountDif: "1.50"},
		{ID: "c", DifQty: "No", DifPrice: "No", QtyDif: "0", AmountDif: "0.00"},
		{ID: "d", DifQty: "Yes", DifPrice: "Yes", QtyDif: "2", AmountDif: "1.51"},
		{ID: "e", DifQty: "No", DifPrice: "No", QtyDif: "0", AmountDif: "0.00"},
	}

	groups := groupDifferences(records)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	wantIDs := [][]string{{"a", "c", "e"}, {"b"}, {"d"}}
	for i, g := range groups {
		if strings.Join(g.IDs, ",") != strings.Join(wantIDs[i], ",") {
			t.Errorf("group %d: expected ids %v, got %v", i, wantIDs[i], g.IDs)
		}
	}
	if groups[2].AmountDif != "1.51" || groups[1].QtyDif != "2" {
		t.Errorf("group values not carried: %+v %+v", groups[1], groups[2])
	}
	if len(groupDifferences(nil)) != 0 {
		t.Error("expected no groups for no records")
	}
}

func TestUpdateGroupSQL(t *testing.T) {
	db := newDryRunDB(t)
	g := &differenceGroup{DifQty: "Yes", DifPrice: "No", QtyDif: "-1", AmountDif: "0.00"}

	stmt := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return updateGroup(tx, g, []string{"id-1", "id-2"})
	})

	for _, want := range []string{
		`UPDATE "reconciliation_records" SET`,
		`"dif_qty"='Yes'`,
		`"qty_dif"='-1'`,
		`WHERE id IN ('id-1','id-2')`,
	} {
		if !strings.Contains(stmt, want) {
			t.Errorf("expected %q in %s", want, stmt)
		}
	}
	if strings.Count(stmt, "UPDATE") != 1 {
		t.Errorf("expected a single statement, got %s", stmt)
	}
}

func TestReconciliationRecordRoundTrip(t *testing.T) {
	airID := uint(7)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	record := &entity.ReconciliationRecord{
		ID:              "id-1",
		Seq:             3,
		RowKey:          "key",
		AirSourceID:     &airID,
		AirFlightDate:   &date,
		AirFlightNumber: "GA1",
		AirQty:          "100",
		Air:             entity.Yes,
		Cat:             entity.No,
		DifQty:          entity.No,
		DifPrice:        entity.No,
		QtyDif:          entity.DefaultQtyDif,
		AmountDif:       entity.DefaultAmountDif,
	}

	got := toReconciliationRecords([]ReconciliationRecords{fromReconciliationRecord(record)})
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Serialize()["AirFlightDate"] != "2024-03-05" {
		t.Errorf("unexpected flight date %q", got[0].Serialize()["AirFlightDate"])
	}
	if *got[0].AirSourceID != airID || got[0].CatSourceID != nil {
		t.Errorf("source ids not preserved: %+v", got[0])
	}
	if got[0].Seq != 3 || got[0].Origin() != entity.OriginAirOnly {
		t.Errorf("unexpected record %+v", got[0])
	}
}
