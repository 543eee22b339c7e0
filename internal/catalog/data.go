package catalog

import "github.com/franckalain/lymegrove/internal/models"

func defaultDiseases() []models.DiseaseRecord {
	return []models.DiseaseRecord{
		{
			Name:       "Leaf Spot Disease",
			Confidence: 0.85,
			Severity:   models.SeverityModerate,
			Symptoms:   []string{"Brown spots on leaves", "Yellowing around spots", "Leaf drop"},
			Treatment: []string{
				"Remove affected leaves immediately",
				"Improve air circulation around plant",
				"Apply fungicide spray every 7-10 days",
				"Avoid watering leaves directly",
			},
			Prevention: []string{"Water at soil level only", "Ensure good drainage", "Maintain proper spacing between plants"},
		},
		{
			Name:       "Nutrient Deficiency (Nitrogen)",
			Confidence: 0.72,
			Severity:   models.SeverityMild,
			Symptoms:   []string{"Yellowing of older leaves", "Stunted growth", "Pale green coloration"},
			Treatment: []string{
				"Apply balanced liquid fertilizer",
				"Increase feeding frequency during growing season",
				"Check soil pH levels",
				"Consider slow-release fertilizer",
			},
			Prevention: []string{"Regular feeding schedule", "Use quality potting mix", "Monitor plant growth regularly"},
		},
	}
}

func defaultHealthy() models.DiseaseRecord {
	return models.DiseaseRecord{
		Name:       "Healthy Plant",
		Confidence: 0.92,
		Severity:   models.SeverityHealthy,
		Symptoms:   []string{"Vibrant green leaves", "Strong stem structure", "Active growth"},
		Treatment:  []string{"Continue current care routine", "Monitor for any changes", "Maintain consistent watering schedule"},
		Prevention: []string{
			"Regular inspection for early problem detection",
			"Maintain optimal light conditions",
			"Keep consistent care schedule",
		},
	}
}

func defaultSpecies() []models.SpeciesRecord {
	return []models.SpeciesRecord{
		{
			ScientificName:    "Monstera deliciosa",
			CommonNames:       []string{"Swiss Cheese Plant", "Split-leaf Philodendron"},
			Family:            "Araceae",
			Origin:            "Central America",
			Difficulty:        models.DifficultyBeginner,
			LightRequirements: "Bright, indirect light",
			Humidity:          "40-60%",
			Temperature:       "65-80°F (18-27°C)",
			MatureSize:        "6-10 feet indoors",
			GrowthRate:        "Fast",
			Toxicity:          "Toxic to pets and children",
			CommonIssues: []string{
				"Root rot from overwatering",
				"Brown leaf tips from low humidity",
				"Yellowing leaves from overwatering",
			},
			SeasonalCare: map[models.Season]string{
				models.Spring: "Increase watering and begin fertilizing",
				models.Summer: "Regular watering and monthly fertilizing",
				models.Fall:   "Reduce watering frequency",
				models.Winter: "Water sparingly, no fertilizer",
			},
		},
		{
			ScientificName:    "Ficus lyrata",
			CommonNames:       []string{"Fiddle Leaf Fig"},
			Family:            "Moraceae",
			Origin:            "Western Africa",
			Difficulty:        models.DifficultyIntermediate,
			LightRequirements: "Bright, indirect light",
			Humidity:          "30-50%",
			Temperature:       "60-75°F (15-24°C)",
			MatureSize:        "6-10 feet indoors",
			GrowthRate:        "Moderate",
			Toxicity:          "Mildly toxic to pets",
			CommonIssues:      []string{"Brown spots from overwatering", "Leaf drop from stress", "Insect infestations"},
			SeasonalCare: map[models.Season]string{
				models.Spring: "Resume regular watering and fertilizing",
				models.Summer: "Weekly watering, bi-weekly fertilizing",
				models.Fall:   "Reduce watering frequency",
				models.Winter: "Water only when soil is dry",
			},
		},
		{
			ScientificName:    "Sansevieria trifasciata",
			CommonNames:       []string{"Snake Plant", "Mother-in-Law's Tongue"},
			Family:            "Asparagaceae",
			Origin:            "West Africa",
			Difficulty:        models.DifficultyBeginner,
			LightRequirements: "Low to bright, indirect light",
			Humidity:          "30-50%",
			Temperature:       "60-80°F (15-27°C)",
			MatureSize:        "2-4 feet",
			GrowthRate:        "Slow",
			Toxicity:          "Mildly toxic to pets",
			CommonIssues:      []string{"Root rot from overwatering", "Soft leaves from overwatering"},
			SeasonalCare: map[models.Season]string{
				models.Spring: "Water every 2-3 weeks",
				models.Summer: "Water every 2-3 weeks",
				models.Fall:   "Water monthly",
				models.Winter: "Water every 6-8 weeks",
			},
		},
	}
}
