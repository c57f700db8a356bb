package quiz

import "strconv"

// DefaultCatalog holds the four stations of the Linz tour.
var DefaultCatalog = Catalog{
	{
		ID:         1,
		Name:       "Station 1 – Digital Studio",
		Lat:        48.3069,
		Lng:        14.2858,
		StorageKey: StorageKeyFor(1),
		Intro:      "Start of the tour. Look around the **Digital Studio** before answering the three questions.",
		Questions:  solutions("b", "b", "c"),
	},
	{
		ID:         2,
		Name:       "Station 2 – Ars Electronica",
		Lat:        48.3071,
		Lng:        14.2849,
		StorageKey: StorageKeyFor(2),
		Intro:      "The **Ars Electronica Center** on the Danube. Nine questions about art, technology and society.",
		Questions:  solutions("a", "c", "b", "a", "c", "a", "b", "b", "b"),
	},
	{
		ID:         3,
		Name:       "Station 3 – Arbeiterkammer",
		Lat:        48.3009,
		Lng:        14.2841,
		StorageKey: StorageKeyFor(3),
		Intro:      "The **Arbeiterkammer** represents employees in Upper Austria. Eight questions.",
		Questions:  solutions("b", "c", "b", "b", "c", "a", "a", "a"),
	},
	{
		ID:         4,
		Name:       "Station 4 – Wirtschaftskammer",
		Lat:        48.3052,
		Lng:        14.2865,
		StorageKey: StorageKeyFor(4),
		Intro:      "Last stop: the **Wirtschaftskammer**, home of the regional business chamber. Eight questions.",
		Questions:  solutions("a", "b", "a", "b", "a", "b", "a", "a"),
	},
}

// solutions numbers the given correct choices q1, q2, ...
func solutions(correct ...string) []Question {
	qs := make([]Question, len(correct))
	for i, c := range correct {
		qs[i] = Question{ID: "q" + strconv.Itoa(i+1), Correct: c}
	}
	return qs
}
