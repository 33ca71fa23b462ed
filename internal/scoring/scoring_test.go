package scoring

import (
	"testing"

	"github.com/octobees/prospect-agent/internal/entity"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func TestCategoryBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, CategoryExcellent},
		{80, CategoryExcellent},
		{79, CategoryGood},
		{60, CategoryGood},
		{59, CategoryAverage},
		{40, CategoryAverage},
		{39, CategoryWeak},
		{0, CategoryWeak},
	}
	for _, tc := range cases {
		if got := Category(tc.score); got != tc.want {
			t.Errorf("Category(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestScoreEmptyProspect(t *testing.T) {
	engine := NewEngine("Marketing Digital")
	p := &entity.Prospect{Name: "Vide SA"}
	if got := engine.Score(p); got != 0 {
		t.Fatalf("empty prospect scored %d, want 0", got)
	}
}

func TestScoreEmailVerificationTiers(t *testing.T) {
	engine := NewEngine("conseil stratégique")

	base := func(status *string) *entity.Prospect {
		return &entity.Prospect{
			Name:        "Tiers SA",
			Email:       strPtr("contact@tiers.ch"),
			EmailStatus: status,
		}
	}

	valid := engine.Score(base(strPtr(entity.EmailStatusValid)))
	catchAll := engine.Score(base(strPtr(entity.EmailStatusCatchAll)))
	unverified := engine.Score(base(nil))

	if valid != 18 {
		t.Errorf("valid email scored %d, want 18", valid)
	}
	if catchAll >= valid {
		t.Errorf("catch-all (%d) should score below valid (%d)", catchAll, valid)
	}
	if unverified >= catchAll {
		t.Errorf("unverified (%d) should score below catch-all (%d)", unverified, catchAll)
	}
	if unverified != 9 {
		t.Errorf("unverified email scored %d, want 9", unverified)
	}
}

func TestScoreMissingWebsiteBonusForWebService(t *testing.T) {
	webEngine := NewEngine("création de site web")
	otherEngine := NewEngine("conseil")

	noSite := &entity.Prospect{Name: "Sans Site"}

	// website weight 15 plus the +10 opening bonus.
	if got := webEngine.Score(noSite); got != 25 {
		t.Errorf("web service scored missing website as %d, want 25", got)
	}
	if got := otherEngine.Score(noSite); got != 0 {
		t.Errorf("non-web service scored missing website as %d, want 0", got)
	}
}

func TestScoreLegacyCMSPreferredForWebService(t *testing.T) {
	engine := NewEngine("développement web")

	prospect := func(techs []string) *entity.Prospect {
		return &entity.Prospect{
			Name:         "CMS SA",
			Website:      strPtr("https://cms.example.ch"),
			Technologies: techs,
		}
	}

	legacy := engine.Score(prospect([]string{"WordPress"}))
	modern := engine.Score(prospect([]string{"React"}))

	if legacy <= modern {
		t.Errorf("legacy CMS (%d) should outrank modern stack (%d)", legacy, modern)
	}
	// website 15 + legacy bonus 8 + technologies 15.
	if legacy != 38 {
		t.Errorf("legacy CMS prospect scored %d, want 38", legacy)
	}
}

func TestScoreRatingAndReviewTiers(t *testing.T) {
	engine := NewEngine("Marketing Digital")

	prospect := func(rating float64, reviews int) *entity.Prospect {
		return &entity.Prospect{
			Name:    "Avis SA",
			Rating:  f64Ptr(rating),
			Reviews: intPtr(reviews),
		}
	}

	top := engine.Score(prospect(4.6, 60))
	mid := engine.Score(prospect(4.1, 25))
	low := engine.Score(prospect(3.0, 5))

	// rating 20 + reviews 15 at full weight.
	if top != 35 {
		t.Errorf("top-rated prospect scored %d, want 35", top)
	}
	if !(top > mid && mid > low) {
		t.Errorf("tiers not monotonic: top=%d mid=%d low=%d", top, mid, low)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	engine := NewEngine("consulting et accompagnement")
	p := &entity.Prospect{
		Name:        "Complet SA",
		Email:       strPtr("direction@complet.ch"),
		EmailStatus: strPtr(entity.EmailStatusValid),
		Phone:       strPtr("+41 22 123 45 67"),
		LinkedInURL: strPtr("https://linkedin.com/company/complet"),
		Website:     strPtr("https://complet.ch"),
		Rating:      f64Ptr(4.9),
		Reviews:     intPtr(120),
		CompanySize: strPtr("51-200"),
		Industry:    strPtr("professional services"),
		Technologies: []string{
			"WordPress",
		},
	}
	got := engine.Score(p)
	if got < 0 || got > 100 {
		t.Fatalf("score %d out of [0,100]", got)
	}
	if got < 90 {
		t.Errorf("fully enriched prospect scored %d, expected a near-maximal score", got)
	}
}

func TestNewEngineSelectsWeightTable(t *testing.T) {
	phone := strPtr("+41 22 000 00 00")

	defaultScore := NewEngine("nettoyage industriel").Score(&entity.Prospect{Name: "X", Phone: phone})
	ecommerceScore := NewEngine("solutions e-commerce").Score(&entity.Prospect{Name: "X", Phone: phone})

	if defaultScore != 15 {
		t.Errorf("default phone weight scored %d, want 15", defaultScore)
	}
	if ecommerceScore != 18 {
		t.Errorf("e-commerce phone weight scored %d, want 18", ecommerceScore)
	}
}
