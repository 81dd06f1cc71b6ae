// Package tiers parses tier requirement rules and selects the tier for a set
// of derived facts. Tiers are evaluated in configured order; the first tier
// whose requirements all hold wins, otherwise the table's fallback tier.
package tiers
