// Package analytics computes the dashboard's aggregates from normalized tables.
//
// Every function is pure: it takes canonical rows from the dataset package and
// returns domain records without touching the filesystem. Empty inputs never
// fail and every derived ratio degrades to 0.
package analytics
