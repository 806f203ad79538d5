package models

// Derived profile fields are computed from the persisted record, never stored.

// FullName joins the developer's first and last name.
func FullName(d *Developer) string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// requiredWeight and optionalWeight split 100% across the 11 tracked profile
// fields: 7 required at 10% each, 4 optional at 7.5% each.
const (
	requiredWeight = 10.0
	optionalWeight = 7.5
)

// ProfileCompletion returns the populated-field percentage as an integer in
// [0, 100]. It is monotonic: filling a field never lowers the score.
func ProfileCompletion(d *Developer) int {
	required := []bool{
		d.FirstName != "",
		d.LastName != "",
		d.Email != "",
		d.Phone != "",
		d.City != "",
		len(d.Skills) > 0,
		d.ExperienceYears > 0,
	}
	optional := []bool{
		d.GithubURL != "",
		d.PortfolioURL != "",
		d.ResumeURL != "",
		d.ProfilePicture != "",
	}

	var score float64
	for _, set := range required {
		if set {
			score += requiredWeight
		}
	}
	for _, set := range optional {
		if set {
			score += optionalWeight
		}
	}

	pct := int(score)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// IsProfileComplete reports whether the profile passes the completeness nudge
// threshold of 80%.
func IsProfileComplete(d *Developer) bool {
	return ProfileCompletion(d) >= 80
}
