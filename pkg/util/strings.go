package util

import (
	"math"
	"strings"
)

/**
* Returns true if the two terms are a fuzzy match
* In this case, if the 'Levenshtein distance' is <= than 2
 */
func IsFuzzyMatch(str1, str2 string) bool {
	return FuzzyMatch(str1, str2) <= 2
}

// FuzzyMatch performs fuzzy string matching using Levenshtein distance
// Returns the minimum edit distance between str1 and the best matching substring of str2
func FuzzyMatch(str1, str2 string) int {
	str1 = strings.ToLower(strings.TrimSpace(str1))
	str2 = strings.ToLower(strings.TrimSpace(str2))

	var shorter, longer string
	if len(str1) <= len(str2) {
		shorter = str1
		longer = str2
	} else {
		shorter = str2
		longer = str1
	}

	// Slide the shorter string across the longer one keeping the best score
	minDistance := math.MaxInt32

	for i := 0; i <= len(longer)-len(shorter); i++ {
		substring := longer[i : i+len(shorter)]
		distance := LevenshteinDistance(shorter, substring)
		if distance < minDistance {
			minDistance = distance
		}
		if minDistance == 0 {
			break
		}
	}

	return minDistance
}

// LevenshteinDistance calculates the Levenshtein distance between two strings
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}

	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}

			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	if a < b && a < c {
		return a
	}
	if b < c {
		return b
	}
	return c
}

// FuzzyMatchScore returns a similarity score between 0.0 and 1.0
// where 1.0 is a perfect match and 0.0 is completely different
func FuzzyMatchScore(str1, str2 string) float64 {
	distance := FuzzyMatch(str1, str2)
	maxLen := len(str1)
	if len(str2) > maxLen {
		maxLen = len(str2)
	}

	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - (float64(distance) / float64(maxLen))
}
