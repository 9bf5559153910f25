package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/outbox"
	"github.com/agoraview/survey-client/pkg/internal/services"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// App is the terminal front end driving the survey flow.
type App struct {
	client *api.Client
	store  *session.Store
	box    *outbox.Outbox

	in  *bufio.Scanner
	out io.Writer
}

func NewApp(client *api.Client, store *session.Store, box *outbox.Outbox) *App {
	return &App{
		client: client,
		store:  store,
		box:    box,
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) prompt(label string) string {
	fmt.Fprintf(a.out, "%s ", color.CyanString(label))
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

// Run fetches the question list and walks the section sequence. When the
// question list cannot be fetched nothing is rendered, matching the landing
// page behavior.
func (a *App) Run() error {
	surveyID := viper.GetUint("api.survey_id")
	questions, err := a.client.ListQuestions(a.store.Authenticated(), surveyID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get questions...")
		return err
	}

	flow := services.NewFlow(a.client, a.store, a.box, questions)

	startAnchor := "tag"
	if state, err := flow.Resume(); err == nil && state != nil {
		fmt.Fprintf(a.out, "돌아오신 것을 환영합니다 (user #%d)\n", state.User.ID)
		if state.Completed {
			if a.prompt("설문을 마치셨습니다. 결과를 보시겠습니까? [y/N]") == "y" {
				return a.showFreshResult()
			}
		} else {
			startAnchor = state.ContinueAnchor
			fmt.Fprintf(a.out, "%s 구간부터 이어집니다\n", startAnchor)
		}
	}

	if !a.runIntro(flow) {
		return nil
	}

	for _, section := range flow.Sections() {
		switch section.Kind {
		case services.SectionIntro, services.SectionTag:
			// The intro ran above; tags are a declared placeholder.
		case services.SectionQuestion:
			if anchorBefore(section.Anchor, startAnchor) {
				continue
			}
			a.askQuestion(flow, section)
		case services.SectionAdditional:
			a.runAdditional(flow)
		}

		if ok, err := flow.Leave(section.Index); err != nil {
			log.Error().Err(err).Str("anchor", section.Anchor).Msg("Failed to leave section...")
		} else if !ok {
			fmt.Fprintln(a.out, color.RedString("세션이 없어 진행할 수 없습니다"))
			return nil
		}
	}

	return a.showFreshResult()
}

// anchorBefore tells whether anchor comes before start in the Qn ordering,
// used to skip already answered questions on resume.
func anchorBefore(anchor, start string) bool {
	if !strings.HasPrefix(anchor, "Q") {
		return false
	}
	if start == "additional" {
		return true
	}
	if !strings.HasPrefix(start, "Q") {
		return false
	}
	current, err1 := strconv.Atoi(anchor[1:])
	from, err2 := strconv.Atoi(start[1:])
	return err1 == nil && err2 == nil && current < from
}

// runIntro gates the flow on a session, creating one through the captcha
// exchange when none is stored. Returns false when the user cannot proceed.
func (a *App) runIntro(flow *services.Flow) bool {
	if ok, _ := flow.Leave(1); ok {
		return true
	}

	challenge, err := a.client.RefreshCaptcha()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get captcha...")
		return false
	}
	fmt.Fprintf(a.out, "사람인지 확인이 필요합니다: %s\n", challenge.ImageURL)

	for {
		value := a.prompt("보이는 문자를 입력해주세요:")
		if len(value) == 0 {
			return false
		}

		created, err := services.RegisterUser(a.client, a.store, services.CaptchaInput{
			Key:   challenge.Key,
			Value: value,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to create user...")
			return false
		}
		if created {
			break
		}
		fmt.Fprintln(a.out, color.RedString("일치하지 않습니다"))

		if challenge, err = a.client.RefreshCaptcha(); err != nil {
			log.Error().Err(err).Msg("Failed to refresh captcha...")
			return false
		}
		fmt.Fprintf(a.out, "새 문제입니다: %s\n", challenge.ImageURL)
	}

	ok, _ := flow.Leave(1)
	return ok
}

func (a *App) askQuestion(flow *services.Flow, section *services.Section) {
	question := section.Question
	order := section.Index - 2
	progress := float64(order) / float64(flow.TotalQuestions()+1) * 100

	fmt.Fprintf(a.out, "\n%s (%.0f%%)\n", color.YellowString("#%d %s", order, question.Title), progress)
	if len(question.Explanation) > 0 {
		fmt.Fprintln(a.out, question.Explanation)
	}
	for idx, choice := range question.Choices {
		marker := " "
		if section.SelectedChoice != nil && *section.SelectedChoice == choice.ID {
			marker = "*"
		}
		fmt.Fprintf(a.out, " [%d]%s %s\n", idx+1, marker, choice.Context)
	}

	raw := a.prompt("선택 (엔터는 건너뛰기):")
	if len(raw) == 0 {
		return
	}
	picked, err := strconv.Atoi(raw)
	if err != nil || picked < 1 || picked > len(question.Choices) {
		fmt.Fprintln(a.out, color.RedString("잘못된 선택입니다"))
		return
	}
	if err := flow.Select(order, question.Choices[picked-1].ID); err != nil {
		log.Error().Err(err).Msg("Failed to select choice...")
		return
	}
	_ = flow.SetEmphasis(order, a.prompt("이 문제를 강조할까요? [y/N]") == "y")
}

func (a *App) runAdditional(flow *services.Flow) {
	input := services.ProfileInput{Sex: a.prompt("성별 (male/female, 엔터는 생략):")}
	if year := a.prompt("출생연도 (엔터는 생략):"); len(year) > 0 {
		input.YearOfBirth, _ = strconv.Atoi(year)
	}
	input.SupportingParty = a.prompt("지지 정당 (엔터는 생략):")

	if err := services.ValidateProfile(input); err != nil {
		fmt.Fprintln(a.out, color.RedString("입력값이 올바르지 않습니다"))
	}

	if feedback := a.prompt("남기실 의견이 있으신가요? (엔터는 생략):"); len(feedback) > 0 {
		_ = services.SubmitFeedback(a.client, a.store, feedback)
	}
}

func (a *App) showFreshResult() error {
	result, err := services.RequestResult(a.client, a.store, models.ResultCategoryParty)
	if err != nil {
		return err
	}
	return a.ShowResult(result.ID)
}

// ShowResult renders the result detail page for the given id, then serves
// the search prompt until the user quits.
func (a *App) ShowResult(id uint) error {
	view, err := services.LoadResult(a.client, a.store, id)
	if err != nil {
		fmt.Fprintln(a.out, color.RedString("결과를 불러올 수 없습니다"))
		return err
	}

	fmt.Fprintf(a.out, "\n%s\n", color.YellowString("설문 결과 #%d", view.Result.ID))
	fmt.Fprintf(a.out, "나의 성향: %s\n", color.GreenString(view.Summary.PositionLabel))
	fmt.Fprintf(a.out, "가장 가까운 대상: %s\n", view.Summary.BestMatch.Name)
	fmt.Fprintf(a.out, "가장 먼 대상: %s\n", view.Summary.WorstMatch.Name)
	fmt.Fprintf(a.out, "[%s]\n", view.CallToAction)

	if view.OwnedByViewer && !view.Result.IsPublic {
		if a.prompt("결과를 공개할까요? (다시 비공개로 바꿀 수 없습니다) [y/N]") == "y" {
			services.PublishResult(a.client, a.store, view.Result.ID)
		}
	}

	for {
		name := a.prompt("비교할 대상 이름 (엔터는 종료):")
		if len(name) == 0 {
			return nil
		}
		match, err := services.SearchTarget(view.Rows, name)
		if err != nil {
			fmt.Fprintln(a.out, color.RedString("찾을 수 없습니다"))
			continue
		}
		fmt.Fprintf(a.out, "%s — %s, %s\n", match.Target.Name, match.PositionLabel, match.SimilarityLabel)

		if a.prompt("문항별 답변을 비교할까요? [y/N]") == "y" {
			a.showReportCard(match.Target.Name)
		}
	}
}

// showReportCard prints, question by question, which choice the searched
// target and the user picked.
func (a *App) showReportCard(name string) {
	questions, err := a.client.ListQuestions(a.store.Authenticated(), viper.GetUint("api.survey_id"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to get questions for report card...")
		return
	}

	for idx, question := range questions {
		voters := services.QuestionVoters(a.client, a.store, question.ID, name)
		if len(voters) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "#%d %s\n", idx+1, question.Subtitle)
		for _, choice := range question.Choices {
			picks, ok := voters[choice.ID]
			if !ok {
				continue
			}
			names := lo.Map(picks, func(item models.ComparisonRecord, _ int) string {
				return item.Name
			})
			fmt.Fprintf(a.out, "  %s : %s\n", choice.Context, strings.Join(names, ", "))
		}
	}
}
