package textengine

import "strings"

type labelRule struct {
	label    string
	keywords []string
}

// First matching rule wins.
var labelRules = []labelRule{
	{"Sci-Fi", []string{"science fiction", "science_fiction", "sci-fi", "scifi"}},
	{"Fantasy", []string{"fantasy"}},
	{"Mystery", []string{"mystery", "detective"}},
	{"Suspense", []string{"thriller", "crime"}},
	{"Romance", []string{"romance", "love"}},
	{"Classics", []string{"classic", "classics", "literature"}},
	{"Nonfiction", []string{"history", "biography", "nonfiction", "essays"}},
	{"Philosophy", []string{"philosophy"}},
	{"Politics", []string{"politic"}},
	{"Space", []string{"space"}},
	{"Dystopia", []string{"dystopia"}},
	{"Adventure", []string{"adventure"}},
}

// SubjectToLabel maps a raw subject to a curated label, or "".
func SubjectToLabel(subject string) string {
	v := strings.ToLower(subject)
	for _, r := range labelRules {
		for _, k := range r.keywords {
			if strings.Contains(v, k) {
				return r.label
			}
		}
	}
	return ""
}

// PickTopLabels returns up to max distinct labels in subject order.
func PickTopLabels(subjects []string, max int) []string {
	labels := make([]string, 0, len(subjects))
	for _, s := range subjects {
		labels = append(labels, SubjectToLabel(s))
	}
	labels = uniq(labels)
	if len(labels) > max {
		labels = labels[:max]
	}
	return labels
}

// SharedLabels returns the candidate's labels that the base work also
// carries, in candidate order.
func SharedLabels(baseSubjects, candSubjects []string) []string {
	base := make(map[string]struct{})
	for _, l := range PickTopLabels(baseSubjects, 6) {
		base[l] = struct{}{}
	}
	var out []string
	for _, l := range PickTopLabels(candSubjects, 6) {
		if _, ok := base[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// CardLabels returns up to two labels for a result card. When no subject
// maps to a curated label it falls back to the first raw subjects,
// shortened.
func CardLabels(subjects []string) []string {
	if labels := PickTopLabels(subjects, 2); len(labels) > 0 {
		return labels
	}
	var out []string
	for _, s := range subjects {
		if len(out) == 2 {
			break
		}
		head, _, _ := strings.Cut(s, " -- ")
		out = append(out, SmartTrim(head, 22))
	}
	return out
}
