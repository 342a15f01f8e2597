package transform

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/call-insights/internal/model"
)

// Sentinels written when the analysis could not be produced.
const (
	UnknownProblem  = "Не удалось определить проблему"
	UnknownFear     = "Не удалось определить страх"
	UnknownSolution = "Не удалось определить желаемый результат"
	UnknownPhrases  = "Не удалось извлечь цитаты"
	UnknownTag      = "неопределено"
)

var lower = cases.Lower(language.Russian)

// DegradedAnalysis returns the fixed placeholder analysis.
func DegradedAnalysis() model.Analysis {
	return model.Analysis{
		MainProblem:     UnknownProblem,
		KeyFear:         UnknownFear,
		ResultSolution:  UnknownSolution,
		OriginalPhrases: []string{UnknownPhrases},
		Tags:            []string{UnknownTag},
	}
}

// DegradedInsights synthesizes product insights from the analysis fields.
func DegradedInsights(a model.Analysis) model.ProductInsights {
	problem := lowerOr(a.MainProblem, "проблема")
	fear := lowerOr(a.KeyFear, "страх")
	solution := lowerOr(a.ResultSolution, "решение")

	return model.ProductInsights{
		ProductInsights: []string{
			fmt.Sprintf("Клиенты сталкиваются с %s, что вызывает %s", problem, fear),
			fmt.Sprintf("Пользователи хотят достичь: %s", solution),
			"Необходимо упростить процесс решения данной проблемы",
		},
		FeatureSuggestions: []string{
			fmt.Sprintf("Добавить функцию для решения %s", problem),
			"Реализовать уведомления о статусе операций",
			"Создать справочный раздел по частым проблемам",
		},
		UXImprovements: []string{
			"Упростить навигацию в проблемной области",
			"Добавить подсказки и инструкции для новых пользователей",
			"Улучшить обратную связь о выполнении операций",
		},
		PriorityLevel: "medium",
	}
}

// DegradedCreatives synthesizes ad headlines and texts from the analysis.
func DegradedCreatives(a model.Analysis) model.Creatives {
	problem := lowerOr(a.MainProblem, "проблема")
	solution := lowerOr(a.ResultSolution, "решение")

	return model.Creatives{
		Headlines: []string{
			fmt.Sprintf("Знакомо: %s? Мы знаем, как помочь", problem),
			fmt.Sprintf("Получите результат: %s", solution),
		},
		AdTexts: []string{
			fmt.Sprintf("Столкнулись с проблемой: %s. Оставьте заявку, и мы поможем добиться результата: %s.", problem, solution),
		},
	}
}

func lowerOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return lower.String(s)
}
