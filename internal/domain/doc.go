// Package domain models COVID-19 cumulative case time series and the
// read-only queries the dashboards run against them.
//
// # Data Source
//
// Each of the three series (confirmed, deaths, recovered) arrives as one
// rectangular table. The first four columns identify a location, the rest
// hold one cumulative count per calendar day:
//
//	Province/State, Country/Region, Lat, Long, 1/22/20, 1/23/20, ...
//	Hubei,          China,          30.97, 112.27, 444,   444,   ...
//	,               Italy,          43.0,  12.0,   0,     2,     ...
//
// Province/State is empty for countries reported as a single row.
//
// # Date Labels
//
// Source day labels use the US short form M/D/YY ("1/22/20", "12/3/20").
// Labels are normalized once at load time to the canonical YYYY-MM-DD form
// by [NormalizeDateLabels]; all queries use canonical days. A query day may
// carry a time suffix ("2020-03-30T00:00:00") which is cut at the "T".
//
// # Counts
//
// Counts are cumulative as of the given day. Upstream corrections can make a
// location's count drop from one day to the next, so no query assumes the
// series is monotonic and day-over-day deltas are reported signed.
//
// # Lifecycle
//
// A [Series] and the [Aggregator] built from three of them are immutable
// after construction. Per-day totals are summed once when the series is
// built, so totals, deltas, and cumulative series never rescan rows.
// Refreshing data means building a new Aggregator and swapping it in.
package domain
