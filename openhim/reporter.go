package openhim

import (
	"context"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/orchestration"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/types"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

// Reporter writes transaction status updates back to the platform.
type Reporter struct {
	client *Client
	urn    string
	log    *log.Log
}

// NewReporter returns a Reporter that signs updates with urn.
func NewReporter(client *Client, urn string) *Reporter {
	return &Reporter{client: client, urn: urn, log: client.log}
}

// ReportStatus authenticates and PUTs a TransactionUpdate for transactionID.
// There is no retry. An empty transactionID is skipped.
func (r *Reporter) ReportStatus(
	ctx context.Context,
	transactionID types.TransactionID,
	statusText string,
	body string,
	statusCode int,
	orchestrations []orchestration.Orchestration,
) error {
	if transactionID.IsEmpty() {
		r.log.Debug("No transaction id on request, skipping status report")
		return nil
	}
	if orchestrations == nil {
		orchestrations = []orchestration.Orchestration{}
	}

	update := TransactionUpdate{
		MediatorURN: r.urn,
		Status:      statusText,
		Response: TransactionResponse{
			Status:    statusCode,
			Timestamp: r.client.now(),
			Body:      body,
		},
		Orchestrations: orchestrations,
	}

	res := r.client.call(ctx, OpTransactionUpdate, httpclient.MethodPut, "transactions/"+transactionID.String(), update, 200)
	if res.IsError() {
		b := blame.TransactionUpdateFailed(transactionID.String(), res.Error())
		r.log.Error(constant.TransactionFailed, log.Blame(b))
		return b
	}

	r.log.Info(constant.TransactionUpdated, log.String(constant.TransactionID, transactionID.String()))
	return nil
}
