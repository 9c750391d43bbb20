// Package insights derives the biomarker dashboard view from a list of records.
//
// Every function here is pure and total: it reads the input list, never mutates
// it, and falls back to a documented default for values outside the closed
// status, trend, filter, and sort vocabularies.
//
//   - Classify / DescribeStatus: status to color tokens and a sentence
//   - DescribeTrend: (trend, status) to a sentence via a fixed table
//   - Filter: keep records matching a status token, or all
//   - Sort: order by recency, name, or severity
//   - Aggregate: counts and latest update over the full list
//   - Compose: the above combined into one View
package insights
