package assessment

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"example.com/rprx-coach/backend/internal/models"
	"example.com/rprx-coach/backend/internal/scoring"
)

type Phase string

const (
	PhaseCore       Phase = "core"
	PhaseTransition Phase = "transition"
	PhaseDeepDive   Phase = "deep_dive"
	PhaseSubmitted  Phase = "submitted"
)

var (
	ErrNoQuestions   = errors.New("assessment has no questions")
	ErrInvalidPhase  = errors.New("operation not allowed in current phase")
	ErrStepBounds    = errors.New("step out of bounds")
	ErrUnanswered    = errors.New("current question is not answered")
	ErrUnknownAnswer = errors.New("answer does not match an active question")
)

// DeepDiveSource отдает deep-dive вопросы по всаднику, упорядоченные по индексу.
type DeepDiveSource interface {
	ListByHorseman(ctx context.Context, horseman models.Horseman) ([]models.DeepDiveQuestion, error)
}

// Flow реализует конечный автомат прохождения оценки: core -> transition -> deep_dive
// -> submitted. Инварианты фаз проверяются самим типом, а не вызывающим кодом.
type Flow struct {
	phase Phase
	step  int

	core    []models.Question
	answers map[uuid.UUID]string

	scores  models.HorsemanScores
	primary models.Horseman

	deep        []models.DeepDiveQuestion
	deepAnswers map[uuid.UUID]string
}

// NewFlow создает автомат в фазе core над упорядоченным списком вопросов.
func NewFlow(core []models.Question) (*Flow, error) {
	if len(core) == 0 {
		return nil, ErrNoQuestions
	}

	ordered := make([]models.Question, len(core))
	copy(ordered, core)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	return &Flow{
		phase:       PhaseCore,
		core:        ordered,
		answers:     make(map[uuid.UUID]string),
		deepAnswers: make(map[uuid.UUID]string),
	}, nil
}

func (f *Flow) Phase() Phase { return f.phase }

func (f *Flow) Step() int { return f.step }

// Scores возвращает баллы всадников, вычисленные при переходе к deep dive.
func (f *Flow) Scores() models.HorsemanScores { return f.scores }

// Primary возвращает доминирующего всадника.
func (f *Flow) Primary() models.Horseman { return f.primary }

// DeepDiveQuestions возвращает отфильтрованный список deep-dive вопросов.
func (f *Flow) DeepDiveQuestions() []models.DeepDiveQuestion { return f.deep }

// Answer записывает ответ на вопрос текущей фазы.
func (f *Flow) Answer(questionID uuid.UUID, value string) error {
	switch f.phase {
	case PhaseCore:
		for _, q := range f.core {
			if q.ID == questionID {
				f.answers[questionID] = value
				return nil
			}
		}
		return ErrUnknownAnswer

	case PhaseDeepDive:
		for _, q := range f.deep {
			if q.ID == questionID {
				f.deepAnswers[questionID] = value
				return nil
			}
		}
		return ErrUnknownAnswer
	}

	return ErrInvalidPhase
}

// CanGoNext сообщает, отвечен ли текущий вопрос.
func (f *Flow) CanGoNext() bool {
	switch f.phase {
	case PhaseCore:
		_, ok := f.answers[f.core[f.step].ID]
		return ok
	case PhaseDeepDive:
		_, ok := f.deepAnswers[f.deep[f.step].ID]
		return ok
	}
	return false
}

// AtLastStep сообщает, находится ли автомат на последнем вопросе фазы.
func (f *Flow) AtLastStep() bool {
	switch f.phase {
	case PhaseCore:
		return f.step == len(f.core)-1
	case PhaseDeepDive:
		return f.step == len(f.deep)-1
	}
	return false
}

// Next переходит к следующему вопросу; требует ответа на текущий.
func (f *Flow) Next() error {
	if f.phase != PhaseCore && f.phase != PhaseDeepDive {
		return ErrInvalidPhase
	}
	if !f.CanGoNext() {
		return ErrUnanswered
	}
	if f.AtLastStep() {
		return ErrStepBounds
	}

	f.step++
	return nil
}

// Back возвращается к предыдущему вопросу в границах [0, N-1].
func (f *Flow) Back() error {
	if f.phase != PhaseCore && f.phase != PhaseDeepDive {
		return ErrInvalidPhase
	}
	if f.step == 0 {
		return ErrStepBounds
	}

	f.step--
	return nil
}

// TransitionToDeepDive считает баллы, определяет доминирующего всадника и
// загружает deep-dive вопросы. Фаза становится transition независимо от
// результата загрузки: пустой список допустим, продолжение блокируется
// через CanStartDeepDive.
func (f *Flow) TransitionToDeepDive(ctx context.Context, source DeepDiveSource) error {
	if f.phase != PhaseCore || !f.AtLastStep() {
		return ErrInvalidPhase
	}
	if !f.CanGoNext() {
		return ErrUnanswered
	}

	f.scores = scoring.CalculateHorsemanScores(f.answeredPairs())
	f.primary = scoring.DeterminePrimaryHorseman(f.scores)
	f.phase = PhaseTransition

	return f.LoadDeepDive(ctx, source)
}

// LoadDeepDive повторно загружает deep-dive вопросы в фазе transition.
func (f *Flow) LoadDeepDive(ctx context.Context, source DeepDiveSource) error {
	if f.phase != PhaseTransition {
		return ErrInvalidPhase
	}

	questions, err := source.ListByHorseman(ctx, f.primary)
	if err != nil {
		return err
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})
	f.deep = questions
	return nil
}

// CanStartDeepDive сообщает, можно ли начать deep dive.
func (f *Flow) CanStartDeepDive() bool {
	return f.phase == PhaseTransition && len(f.deep) > 0
}

// StartDeepDive переводит автомат в фазу deep_dive.
func (f *Flow) StartDeepDive() error {
	if !f.CanStartDeepDive() {
		return ErrInvalidPhase
	}

	f.phase = PhaseDeepDive
	f.step = 0
	return nil
}

// CanSubmit разрешает отправку с последнего отвеченного deep-dive вопроса,
// либо из transition, когда deep-dive вопросов для всадника нет вовсе.
func (f *Flow) CanSubmit() bool {
	if f.phase == PhaseDeepDive {
		return f.AtLastStep() && f.CanGoNext()
	}
	return f.phase == PhaseTransition && len(f.deep) == 0
}

func (f *Flow) markSubmitted() {
	f.phase = PhaseSubmitted
}

// Responses возвращает ответы core-фазы в порядке вопросов.
func (f *Flow) Responses() []models.Response {
	responses := make([]models.Response, 0, len(f.answers))
	for _, q := range f.core {
		if value, ok := f.answers[q.ID]; ok {
			responses = append(responses, models.Response{QuestionID: q.ID, Value: value})
		}
	}
	return responses
}

// DeepDiveAnswers возвращает ответы deep-dive фазы в порядке вопросов.
func (f *Flow) DeepDiveAnswers() []models.DeepDiveAnswer {
	answers := make([]models.DeepDiveAnswer, 0, len(f.deepAnswers))
	for _, q := range f.deep {
		if value, ok := f.deepAnswers[q.ID]; ok {
			answers = append(answers, models.DeepDiveAnswer{
				QuestionID: q.ID,
				Horseman:   q.Horseman,
				Value:      value,
			})
		}
	}
	return answers
}

func (f *Flow) answeredPairs() []scoring.AnsweredQuestion {
	pairs := make([]scoring.AnsweredQuestion, 0, len(f.answers))
	for _, q := range f.core {
		value, ok := f.answers[q.ID]
		if !ok {
			continue
		}
		pairs = append(pairs, scoring.AnsweredQuestion{
			Question: q,
			Response: models.Response{QuestionID: q.ID, Value: value},
		})
	}
	return pairs
}
