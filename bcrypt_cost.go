//go:build !race

package contacts

func passwordHashCost() int {
	return 14
}
