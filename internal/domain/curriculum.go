package domain

// ActivityDefinition describes a curriculum activity and the shape of the
// question set requested for it.
type ActivityDefinition struct {
	ID            string
	Title         string
	Objective     string
	Content       string
	Unit          string
	OptionCount   int
	QuestionCount int
	FixtureSet    string
	PromptPreface string
}

// NewActivity returns the activity in its initial, unplayed state.
func (d ActivityDefinition) NewActivity() Activity {
	return Activity{
		ID:          d.ID,
		Title:       d.Title,
		Objective:   d.Objective,
		Content:     d.Content,
		Questions:   []Question{},
		UserAnswers: map[int]string{},
	}
}

// Curriculum is the set of activities seeded on first dashboard load.
var Curriculum = []ActivityDefinition{
	{
		ID:            "stats-position-measures",
		Unit:          "Estadística",
		Title:         "Medidas de posición (cuartiles, quintiles, deciles y percentiles) y Gráficos de cajón.",
		Objective:     "Determinar medidas de posición en un conjunto de datos agrupados o no agrupados en tablas/ Utilizar un gráfico de cajón para describir un conjunto de datos utilizando cuartiles.",
		Content:       "cuartiles, quintiles, deciles y percentiles / gráficos de cajón.",
		OptionCount:   4,
		QuestionCount: 15,
		FixtureSet:    "stats",
		PromptPreface: "Based on the following educational curriculum for a statistics class",
	},
	{
		ID:            "paes-math-prep",
		Unit:          "Preparación PAES",
		Title:         "Preparación PAES de Matemática M1",
		Objective:     "Evaluar y reforzar conocimientos en las áreas clave de la prueba PAES de Matemática: Números, Álgebra y Funciones, Geometría, y Probabilidad y Estadística.",
		Content:       "Resolución de problemas, suficiencia de datos y aplicación de conceptos matemáticos de la prueba obligatoria M1.",
		OptionCount:   5,
		QuestionCount: 20,
		FixtureSet:    "paes",
		PromptPreface: "Based on the following educational curriculum for a PAES Math test preparation module, similar in style and difficulty to the Chilean PAES M1 test",
	},
}

// DefinitionFor looks up the catalog entry for an activity id.
func DefinitionFor(activityID string) (ActivityDefinition, bool) {
	for _, d := range Curriculum {
		if d.ID == activityID {
			return d, true
		}
	}
	return ActivityDefinition{}, false
}

// SeedActivities builds the initial activity list from the catalog.
func SeedActivities() []Activity {
	out := make([]Activity, 0, len(Curriculum))
	for _, d := range Curriculum {
		out = append(out, d.NewActivity())
	}
	return out
}
