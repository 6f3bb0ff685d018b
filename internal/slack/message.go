package slack

import (
	"fmt"
	"time"

	"brandreply/internal/model"
)

// Block Kit payload types, limited to what the notification uses.
type Message struct {
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notification is the data rendered into the Slack draft message.
type Notification struct {
	Subject     string
	Answers     []model.QuestionAnswer
	GeneratedAt time.Time
}

var kst = time.FixedZone("KST", 9*60*60)

// BuildMessage renders the notification as Block Kit blocks: a header, the
// email subject, one section pair per question/answer with dividers between
// pairs, and a disclaimer footer with the generation timestamp in KST.
func BuildMessage(n Notification) Message {
	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: "📩 새로운 고객 문의 답변 생성"},
		},
		{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: "*이메일 제목*\n" + n.Subject},
		},
		{Type: "divider"},
	}

	for i, qa := range n.Answers {
		questionLabel := "*❓ 고객 질문 *"
		if len(n.Answers) > 1 {
			questionLabel = fmt.Sprintf("*❓ 고객 질문 #%d*", i+1)
		}
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: questionLabel + "\n" + qa.Question},
		})
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: "*🤖 생성된 AI 답변*\n" + qa.Answer},
		})
		if i < len(n.Answers)-1 {
			blocks = append(blocks, Block{Type: "divider"})
		}
	}

	blocks = append(blocks, Block{
		Type: "context",
		Elements: []TextObject{
			{Type: "mrkdwn", Text: "⚠️ *자동 생성된 초안입니다. 검토 후 사용하세요.*"},
		},
	})
	blocks = append(blocks, Block{
		Type: "context",
		Elements: []TextObject{
			{Type: "mrkdwn", Text: "생성 시각: " + n.GeneratedAt.In(kst).Format("2006-01-02 15:04:05")},
		},
	})

	return Message{Blocks: blocks}
}
