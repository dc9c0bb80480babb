// Package share computes expense splits between friends and builds the
// payment links handed to the notification layer. QR image rendering and
// clipboard/share integrations live outside this service.
package share

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Friend is one participant in a split, excluding the payer.
	Friend struct {
		Name  string
		Email string
		Share float64
	}

	// Split is a fully-resolved division of a transaction amount.
	Split struct {
		Total     float64
		YourShare float64
		Friends   []Friend
	}
)

var ErrNoFriends = errors.New("no friends to split with")

// SplitEqually divides amount evenly between the payer and every friend.
// Each friend owes amount/(n+1); the payer keeps the remainder.
func SplitEqually(amount float64, friends []Friend) (Split, error) {
	if len(friends) == 0 {
		return Split{}, ErrNoFriends
	}

	each := amount / float64(len(friends)+1)

	out := Split{Total: amount, Friends: make([]Friend, len(friends))}
	for i, f := range friends {
		f.Share = each
		out.Friends[i] = f
	}
	out.YourShare = YourShare(amount, out.Friends)

	return out, nil
}

// YourShare returns what remains for the payer after the friends' shares.
func YourShare(amount float64, friends []Friend) float64 {
	var total float64
	for _, f := range friends {
		total += f.Share
	}
	return amount - total
}

// SummaryText renders a plain-text breakdown of the split for sharing.
func (s Split) SummaryText(description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expense: %s\n", description)
	fmt.Fprintf(&b, "Total: %.2f\n", s.Total)
	fmt.Fprintf(&b, "Your share: %.2f\n", s.YourShare)
	b.WriteString("\nFriend shares:\n")
	for _, f := range s.Friends {
		fmt.Fprintf(&b, "%s: %.2f\n", f.Name, f.Share)
	}
	return b.String()
}
