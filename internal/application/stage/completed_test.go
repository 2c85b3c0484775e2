package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

func completedSession() *model.Session {
	s := identifiedSessionAt(valueobject.StateCompleted)
	s.Context.IdentityVerified = true
	s.Context.AddressVerified = true
	s.Context.IncomeVerified = true
	s.Context.OfferAccepted = true
	s.Context.Documents = &model.IssuedDocuments{
		LoanID: "PL20250601100000",
		SanctionLetter: model.DocumentReference{
			ID: "doc-1", Kind: DocumentKindSanctionLetter, Location: "memory://documents/doc-1",
		},
		RepaymentSchedule: model.DocumentReference{
			ID: "doc-2", Kind: DocumentKindRepaymentSchedule, Location: "memory://documents/doc-2",
		},
		DisbursementDate: testNow.Add(disbursementLeadTime),
		FirstEMIDue:      testNow.Add(disbursementLeadTime).AddDate(0, 1, 0),
		GeneratedAt:      testNow,
	}
	return s
}

func TestCompleted_NewLoanRewindsToInquiry(t *testing.T) {
	s := completedSession()

	reply, err := Completed{}.Handle(context.Background(), s, msg("I'd like another loan"))
	require.NoError(t, err)

	assert.True(t, s.State.Equal(valueobject.StateProductInquiry))
	assert.Nil(t, s.Context.Documents)
	assert.True(t, s.Context.AllVerified())
	assert.Contains(t, reply.Text, "already verified")
}

func TestCompleted_DownloadRequest(t *testing.T) {
	s := completedSession()

	reply, err := Completed{}.Handle(context.Background(), s, msg("download my sanction letter"))
	require.NoError(t, err)

	assert.Contains(t, reply.Text, "PL20250601100000")
	assert.Contains(t, reply.Text, "memory://documents/doc-1")
}

func TestCompleted_EmailRequestUsesProfileEmail(t *testing.T) {
	s := completedSession()

	reply, err := Completed{}.Handle(context.Background(), s, msg("email them to me please"))
	require.NoError(t, err)

	assert.Contains(t, reply.Text, "raj.sharma@example.com")
}

func TestCompleted_DisbursementInquiry(t *testing.T) {
	s := completedSession()

	reply, err := Completed{}.Handle(context.Background(), s, msg("when will the money be credited?"))
	require.NoError(t, err)

	assert.Contains(t, reply.Text, "credited to your account")
}

func TestCompleted_DefaultClosing(t *testing.T) {
	s := completedSession()

	reply, err := Completed{}.Handle(context.Background(), s, msg("great, thanks!"))
	require.NoError(t, err)

	assert.Contains(t, reply.Text, "Thank you")
	assert.True(t, s.State.Equal(valueobject.StateCompleted))
}
