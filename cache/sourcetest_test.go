package cache_test

import "testing"
import "github.com/diffeo/go-collection/collection/sourcetest"

func TestCatalogTrivial(t *testing.T) {
	sourcetest.TestCatalogTrivial(t)
}
func TestBadConfig(t *testing.T) {
	sourcetest.TestBadConfig(t)
}
func TestCountFilters(t *testing.T) {
	sourcetest.TestCountFilters(t)
}
func TestNumericFilter(t *testing.T) {
	sourcetest.TestNumericFilter(t)
}
func TestSearch(t *testing.T) {
	sourcetest.TestSearch(t)
}
func TestSortOrder(t *testing.T) {
	sourcetest.TestSortOrder(t)
}
func TestNumericSort(t *testing.T) {
	sourcetest.TestNumericSort(t)
}
func TestFetchWindow(t *testing.T) {
	sourcetest.TestFetchWindow(t)
}
func TestPageConsistency(t *testing.T) {
	sourcetest.TestPageConsistency(t)
}
func TestDeleteRecords(t *testing.T) {
	sourcetest.TestDeleteRecords(t)
}
func TestReconfigure(t *testing.T) {
	sourcetest.TestReconfigure(t)
}
func TestCanceledContext(t *testing.T) {
	sourcetest.TestCanceledContext(t)
}
