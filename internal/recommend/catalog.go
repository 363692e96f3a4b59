// Package recommend holds the static precaution and diet content for each
// risk level. The table is built once and never modified; lookups hand out
// copies.
package recommend

import "github.com/Alias1177/HeartGuard/models"

// FallbackLevel answers lookups for strings that are not a known level
const FallbackLevel = models.ModerateRisk

var catalog = map[models.RiskLevel]models.RecommendationBundle{
	models.LowRisk: {
		Precautions: models.Precautions{
			Title: "[LOW RISK] - Maintain Good Health",
			Precautions: []string{
				"• Continue regular exercise (30 mins daily)",
				"• Maintain healthy weight",
				"• Keep blood pressure under control",
				"• Regular health check-ups (yearly)",
				"• Avoid smoking and excessive alcohol",
				"• Manage stress through meditation",
				"• Sleep 7-8 hours daily",
				"• Monitor cholesterol levels",
			},
		},
		DietPlan: models.DietPlan{
			Title: "[DIET] BALANCED DIET PLAN",
			FoodsToEat: []string{
				"[OK] Fatty fish (salmon, mackerel) - 2x weekly",
				"[OK] Whole grains and oats daily",
				"[OK] Fresh fruits - 2-3 servings daily",
				"[OK] Vegetables - 3-4 servings daily",
				"[OK] Nuts and seeds - 1 handful daily",
				"[OK] Legumes and beans - 3x weekly",
				"[OK] Low-fat dairy products",
				"[OK] Olive oil for cooking",
				"[OK] Lean poultry without skin",
			},
			FoodsToAvoid: []string{
				"[NO] Minimal red meat (1-2 times/month)",
				"[NO] Limit processed foods",
				"[NO] Avoid sugary drinks and desserts",
				"[NO] Reduce saturated fats",
				"[NO] Minimize salt intake",
				"[NO] Avoid fried foods",
				"[NO] No trans fats",
				"[NO] Limit alcohol",
			},
		},
	},
	models.ModerateRisk: {
		Precautions: models.Precautions{
			Title: "[MODERATE RISK] - Take Preventive Measures",
			Precautions: []string{
				"• Increase exercise to 45 mins daily",
				"• Reduce sodium intake significantly",
				"• Control weight strictly",
				"• Monitor blood pressure daily",
				"• Check cholesterol every 3-6 months",
				"• Avoid stress and take breaks",
				"• Limit alcohol consumption",
				"• Consult with cardiologist",
				"• Take prescribed medications on time",
				"• Monitor blood sugar if diabetic",
			},
		},
		DietPlan: models.DietPlan{
			Title: "[DIET] HEART-HEALTHY DIET PLAN",
			FoodsToEat: []string{
				"[OK] Oily fish daily (salmon, sardines, tuna)",
				"[OK] Whole grains at every meal",
				"[OK] Leafy greens (spinach, kale) daily",
				"[OK] Colorful vegetables 4+ servings/day",
				"[OK] Berries and citrus fruits daily",
				"[OK] Nuts and seeds 1-2 servings/day",
				"[OK] Legumes and beans daily",
				"[OK] Extra virgin olive oil only",
				"[OK] Garlic and onions (beneficial for heart)",
				"[OK] Green tea 2-3 cups daily",
			},
			FoodsToAvoid: []string{
				"[NO] NO red meat",
				"[NO] Eliminate processed foods",
				"[NO] NO sugary items",
				"[NO] NO trans fats or saturated fats",
				"[NO] VERY LOW salt (< 2g/day)",
				"[NO] NO fried or fatty foods",
				"[NO] Minimize dairy (only low-fat)",
				"[NO] NO alcohol or very minimal",
				"[NO] NO refined carbohydrates",
				"[NO] NO fast food or takeouts",
			},
		},
	},
	models.HighRisk: {
		Precautions: models.Precautions{
			Title: "[HIGH RISK] - Immediate Medical Attention Required",
			Precautions: []string{
				"• CONSULT CARDIOLOGIST IMMEDIATELY",
				"• Get ECG and stress test done",
				"• Daily blood pressure monitoring",
				"• Strict salt restriction (< 1500mg/day)",
				"• Exercise only with doctor's guidance",
				"• Regular medication as prescribed",
				"• Monitor any chest pain or discomfort",
				"• Keep emergency contact ready",
				"• Avoid stressful activities",
				"• Weekly health check-ups recommended",
				"• Maintain food diary",
				"• Regular follow-ups with specialist",
			},
		},
		DietPlan: models.DietPlan{
			Title: "[DIET] STRICT THERAPEUTIC DIET PLAN (Follow Strictly)",
			FoodsToEat: []string{
				"[OK] Fatty fish 3-4x weekly (doctor approved)",
				"[OK] Whole grains & brown rice at every meal",
				"[OK] Spinach, kale, broccoli daily",
				"[OK] Red/orange/yellow vegetables (5+ servings)",
				"[OK] Citrus fruits, berries (3+ servings/day)",
				"[OK] Legumes & beans with every lunch/dinner",
				"[OK] Garlic & onions in every meal",
				"[OK] Extra virgin olive oil for cooking",
				"[OK] Herbs instead of salt for flavoring",
				"[OK] Green/herbal tea 3-4 cups daily",
				"[OK] Water - 8-10 glasses daily",
				"[OK] Low-sodium broth & soups",
			},
			FoodsToAvoid: []string{
				"[NO] COMPLETELY NO red meat",
				"[NO] NO processed foods whatsoever",
				"[NO] NO sugar, sweets, or desserts",
				"[NO] ZERO salt or minimal salt",
				"[NO] NO fried, oily, or fatty foods",
				"[NO] NO saturated fats or trans fats",
				"[NO] NO butter or cream",
				"[NO] NO full-fat dairy products",
				"[NO] NO refined carbohydrates",
				"[NO] NO alcohol",
				"[NO] NO fast food, takeouts, or eating out",
				"[NO] NO canned foods (high sodium)",
				"[NO] NO coffee or caffeine",
				"[WARNING] CONSULT DIETITIAN FOR DETAILED PLAN",
			},
		},
	},
}

// Resolve returns the level a lookup for s is answered with
func Resolve(s string) models.RiskLevel {
	if level, ok := models.ParseRiskLevel(s); ok {
		return level
	}
	return FallbackLevel
}

// BundleFor returns the content for level, falling back to MODERATE_RISK
func BundleFor(level string) models.RecommendationBundle {
	b := catalog[Resolve(level)]
	return models.RecommendationBundle{
		Precautions: copyPrecautions(b.Precautions),
		DietPlan:    copyDiet(b.DietPlan),
	}
}

// PrecautionsFor returns the precaution list for level, falling back to MODERATE_RISK
func PrecautionsFor(level string) models.Precautions {
	return copyPrecautions(catalog[Resolve(level)].Precautions)
}

// DietFor returns the diet plan for level, falling back to MODERATE_RISK
func DietFor(level string) models.DietPlan {
	return copyDiet(catalog[Resolve(level)].DietPlan)
}

// Levels lists the levels present in the catalog, lowest first
func Levels() []models.RiskLevel {
	return []models.RiskLevel{models.LowRisk, models.ModerateRisk, models.HighRisk}
}

func copyPrecautions(p models.Precautions) models.Precautions {
	return models.Precautions{
		Title:       p.Title,
		Precautions: append([]string(nil), p.Precautions...),
	}
}

func copyDiet(d models.DietPlan) models.DietPlan {
	return models.DietPlan{
		Title:        d.Title,
		FoodsToEat:   append([]string(nil), d.FoodsToEat...),
		FoodsToAvoid: append([]string(nil), d.FoodsToAvoid...),
	}
}
