// Package review implements the review submission use case: recording a
// graded answer and advancing the card's scheduling state in one transaction.
package review
