package seeder

import "time"

func Defaults(now time.Time) []Seeder {
	return []Seeder{
		ConcorsiSeeder{Now: now},
		ArticoliSeeder{Now: now},
	}
}
