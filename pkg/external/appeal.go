package external

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// appealTemplate is the offline fallback letter, produced whenever the
// generation service is unconfigured or unreachable.
const appealTemplate = `
**Appeal Letter Template Generated by ClaimEquity AI Agent**

Dear Insurance Claims Department,

I am writing to appeal the denial of my claim. Based on the analysis of my claim document:

**Key Points:**
- The claim appears to be medically necessary
- All required documentation should be present
- The treatment aligns with standard medical practice

**Requested Action:**
Please review this appeal and reconsider the denial. I am available to provide any additional information needed.

Thank you for your consideration.

Sincerely,
[Your Name]
`

// DedalusAppealWriter generates appeal letters through a Dedalus-style agent
// endpoint, degrading to the local template on any failure.
type DedalusAppealWriter struct {
	client *chatClient
	log    *logrus.Logger
}

// NewDedalusAppealWriter creates the appeal-letter client.
func NewDedalusAppealWriter(config domain.LLMConfig, logger *logrus.Logger) *DedalusAppealWriter {
	return &DedalusAppealWriter{
		client: newChatClient("Dedalus", config, logger),
		log:    logger,
	}
}

// Write drafts an appeal letter for the claim. It never fails: without a
// configured key, or when the agent errors, the caller gets the template.
func (w *DedalusAppealWriter) Write(ctx context.Context, claimText string) string {
	if !w.client.configured() {
		return appealTemplate
	}

	prompt := fmt.Sprintf(`Act as a healthcare insurance claim agent. Analyze this claim and generate a professional appeal letter:

%s

Provide:
1. A clear summary of why the claim should be approved
2. A professional appeal letter template
3. Key talking points for follow-up
`, truncate(claimText, 3000))

	letter, err := w.client.complete(ctx,
		"You are a healthcare insurance claim agent drafting professional appeal letters.",
		prompt, 1000, 0.5)
	if err != nil {
		w.log.WithError(err).Warn("Appeal generation failed, using template")
		return appealTemplate
	}
	return letter
}
