package concorso

import (
	"testing"
	"time"
)

func TestCalendarDaysBetween(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2026, 3, 10, 6, 0, 0, 0, rome),
			b:    time.Date(2026, 3, 10, 23, 59, 0, 0, rome),
			want: 0,
		},
		{
			name: "late evening to next morning",
			a:    time.Date(2026, 3, 10, 23, 30, 0, 0, rome),
			b:    time.Date(2026, 3, 11, 0, 30, 0, 0, rome),
			want: 1,
		},
		{
			name: "utc instant that is already tomorrow in rome",
			a:    time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			b:    time.Date(2026, 3, 12, 12, 0, 0, 0, rome),
			want: 1,
		},
		{
			name: "across dst change",
			a:    time.Date(2026, 3, 28, 12, 0, 0, 0, rome),
			b:    time.Date(2026, 4, 4, 12, 0, 0, 0, rome),
			want: 7,
		},
		{
			name: "past deadline",
			a:    time.Date(2026, 3, 10, 12, 0, 0, 0, rome),
			b:    time.Date(2026, 3, 9, 12, 0, 0, 0, rome),
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalendarDaysBetween(tt.a, tt.b, rome); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConcorso_IsOpen(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(Concorso{}).IsOpen(now) {
		t.Fatalf("no deadline should be open")
	}
	if (Concorso{DataChiusura: &past}).IsOpen(now) {
		t.Fatalf("past deadline should be closed")
	}
	if !(Concorso{DataChiusura: &future}).IsOpen(now) {
		t.Fatalf("future deadline should be open")
	}
	if (Concorso{Stato: "Closed", DataChiusura: &future}).IsOpen(now) {
		t.Fatalf("closed status should win over deadline")
	}
}
