package stage

import (
	"context"
	"fmt"

	"github.com/bibbank/origination/internal/domain/model"
	"github.com/bibbank/origination/internal/domain/service"
	"github.com/bibbank/origination/internal/domain/valueobject"
)

// Completed handles the COMPLETED stage: document retrieval for the
// sanctioned loan, disbursement questions, and starting a follow-up
// application.
type Completed struct{}

var completedRules = []service.IntentRule{
	{
		Tag:   valueobject.IntentNewLoan,
		Match: service.ContainsAny("another loan", "new loan", "apply again", "one more", "second loan"),
	},
	{
		Tag:   valueobject.IntentDownloadRequest,
		Match: service.ContainsAny("download", "show my documents", "sanction letter", "schedule", "documents"),
	},
	{
		Tag:   valueobject.IntentEmailRequest,
		Match: service.ContainsAny("email", "mail", "send me"),
	},
	{
		Tag:   valueobject.IntentDisbursementInquiry,
		Match: service.ContainsAny("disburse", "when will i get", "credited", "transfer"),
	},
	{
		Tag:   valueobject.IntentHelpRequest,
		Match: service.ContainsAny("help", "support", "question", "contact"),
	},
}

func (h Completed) Handle(_ context.Context, s *model.Session, msg Message) (Reply, error) {
	intent := service.ClassifyIntent(msg.Text, completedRules, valueobject.IntentGeneralCompleted)

	docs := s.Context.Documents

	switch intent {
	case valueobject.IntentNewLoan:
		if err := s.StartNewLoan(msg.Received); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text: "Happy to help with another loan! Since you're already verified this will be quick. " +
				"How much would you like to borrow this time?",
		}, nil

	case valueobject.IntentDownloadRequest:
		if docs == nil {
			return Reply{Text: "I don't have documents on file for this conversation."}, nil
		}
		return Reply{
			Text: fmt.Sprintf("Here are your documents for loan %s: sanction letter (%s) "+
				"and repayment schedule (%s).",
				docs.LoanID, docs.SanctionLetter.Location, docs.RepaymentSchedule.Location),
		}, nil

	case valueobject.IntentEmailRequest:
		if docs == nil {
			return Reply{Text: "I don't have documents on file for this conversation."}, nil
		}
		email := "your registered email address"
		if s.Profile != nil && s.Profile.Email != "" {
			email = s.Profile.Email
		}
		return Reply{
			Text: fmt.Sprintf("I've sent the sanction letter and repayment schedule for "+
				"loan %s to %s.", docs.LoanID, email),
		}, nil

	case valueobject.IntentDisbursementInquiry:
		if docs == nil {
			return Reply{Text: "There's no disbursement pending on this conversation."}, nil
		}
		return Reply{
			Text: fmt.Sprintf("Your loan amount will be credited to your account by %s. "+
				"The first EMI falls due on %s.",
				docs.DisbursementDate.Format("2 January 2006"),
				docs.FirstEMIDue.Format("2 January 2006")),
		}, nil

	case valueobject.IntentHelpRequest:
		return Reply{
			Text: "For anything about your sanctioned loan you can ask me here, " +
				"call our support line, or visit your nearest branch. " +
				"I can also start a new application whenever you like.",
		}, nil

	default:
		return Reply{
			Text: "Thank you for banking with us! Your loan is all set. " +
				"Ask me for your documents any time, or say \"new loan\" to start another application.",
		}, nil
	}
}
