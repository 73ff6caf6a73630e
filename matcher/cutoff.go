package matcher

import "strings"

// Cutoff intent keywords, matched as substrings of the normalized query.
// "cutoff" also covers "cutoffs" and "rank" covers "ranks" and "ranking".
var cutoffSubstrings = []string{"cutoff", "cut off", "cut-off", "rank", "ranks"}

// branchRoute maps a branch to the keywords that select it and the response
// returned for it. Short codes are matched on word boundaries, full names
// as substrings. Routes are checked in table order and the first hit wins.
type branchRoute struct {
	Branch  string
	Tokens  []string
	Phrases []string
	Answer  string
}

const (
	cseCutoffAnswer = "Cutoff ranks for CSE (Computer Science and Engineering) at NIE, last available year:\n" +
		"- KCET (college code E178): 8726\n" +
		"- COMEDK (college code E085): 10182\n" +
		"Note: These are last year's figures and may change for current admissions."

	iseCutoffAnswer = "Cutoff ranks for ISE (Information Science and Engineering) at NIE, last available year:\n" +
		"- KCET (college code E178): 10492\n" +
		"- COMEDK (college code E085): 13877\n" +
		"Note: These are last year's figures and may change for current admissions."

	ciCutoffAnswer = "Cutoff ranks for CI (Computer Science and Engineering - AI & ML) at NIE, last available year:\n" +
		"- KCET (college code E178): 11300\n" +
		"- COMEDK (college code E085): 12789\n" +
		"Note: These are last year's figures and may change for current admissions."

	eceCutoffAnswer = "Cutoff ranks for ECE (Electronics and Communication Engineering) at NIE, last available year:\n" +
		"- KCET Aided (college code E022): 95447\n" +
		"- KCET Unaided (college code E056): 48525\n" +
		"- COMEDK (college code E142): 29308\n" +
		"Note: These are last year's figures and may change for current admissions."

	eeeCutoffAnswer = "Cutoff ranks for EEE (Electrical and Electronics Engineering) at NIE, last available year:\n" +
		"- KCET Unaided (college code E056): 35887\n" +
		"- COMEDK (college code E142): 101747\n" +
		"Note: These are last year's figures and may change for current admissions."

	meCutoffAnswer = "Cutoff ranks for ME (Mechanical Engineering) at NIE, last available year:\n" +
		"- KCET Aided (college code E022): 42543\n" +
		"- KCET Unaided (college code E056): 61681\n" +
		"- COMEDK (college code E142): 95259\n" +
		"Note: These are last year's figures and may change for current admissions."

	civilCutoffAnswer = "Cutoff ranks for Civil Engineering at NIE, last available year:\n" +
		"- KCET Aided (college code E022): 95447\n" +
		"- KCET Unaided (college code E056): 115835\n" +
		"- COMEDK (college code E142): 80212\n" +
		"Note: These are last year's figures and may change for current admissions."

	clarifyCutoffResponse = "I'd be happy to help with cutoff information! Could you please specify which " +
		"branch you're interested in - CSE, ISE, CI (AI & ML), ECE, EEE, Mechanical, or Civil? " +
		"This will help me provide you with the most accurate and relevant cutoff data."
)

// branchRoutes is checked in order. "me" sits last because it is the most
// ambiguous token ("give me ..."), so any other branch keyword in the same
// query takes precedence.
var branchRoutes = []branchRoute{
	{
		Branch:  "cse",
		Tokens:  []string{"cse"},
		Phrases: []string{"computer science"},
		Answer:  cseCutoffAnswer,
	},
	{
		Branch:  "ise",
		Tokens:  []string{"ise"},
		Phrases: []string{"information science"},
		Answer:  iseCutoffAnswer,
	},
	{
		Branch:  "ci",
		Tokens:  []string{"ci"},
		Phrases: []string{"ai & ml", "ai and ml", "artificial intelligence"},
		Answer:  ciCutoffAnswer,
	},
	{
		Branch:  "ece",
		Tokens:  []string{"ece"},
		Phrases: []string{"electronics and communication", "electronics & communication"},
		Answer:  eceCutoffAnswer,
	},
	{
		Branch:  "eee",
		Tokens:  []string{"eee"},
		Phrases: []string{"electrical and electronics", "electrical & electronics"},
		Answer:  eeeCutoffAnswer,
	},
	{
		Branch:  "civil",
		Tokens:  []string{"civil"},
		Phrases: []string{"civil engineering"},
		Answer:  civilCutoffAnswer,
	},
	{
		Branch:  "me",
		Tokens:  []string{"me", "mech"},
		Phrases: []string{"mechanical"},
		Answer:  meCutoffAnswer,
	},
}

// hasCutoffIntent reports whether a normalized query asks about cutoff
// ranks. Matching is plain substring containment, so "ranking" counts.
func hasCutoffIntent(query string) bool {
	for _, sub := range cutoffSubstrings {
		if strings.Contains(query, sub) {
			return true
		}
	}
	return false
}

// matchBranch returns the first branch route whose keywords appear in the
// normalized query, or nil when no branch is recognized.
func matchBranch(query string) *branchRoute {
	tokens := tokenize(query)
	for i := range branchRoutes {
		route := &branchRoutes[i]
		for _, token := range route.Tokens {
			if hasToken(tokens, token) {
				return route
			}
		}
		for _, phrase := range route.Phrases {
			if strings.Contains(query, phrase) {
				return route
			}
		}
	}
	return nil
}
