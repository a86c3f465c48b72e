// Package gmail provides a client for the parts of the Gmail API used to
// collect receipt attachments.
//
// The client searches a mailbox with a query, paging through every result,
// fetches full messages, locates attachment parts and downloads and decodes
// their bodies. Authentication is delegated to the *http.Client passed to
// NewClient, normally built by the google package from a bearer token.
//
// Missing optional fields are never errors: parts without a body or
// attachment id are ignored, and attachment bodies without data surface as
// ErrNoData so callers can skip them.
//
// Example usage:
//
//	httpClient := google.NewHTTPClient(ctx, token, nil)
//	client, err := gmail.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//
//	ids, err := client.SearchMessageIDs(ctx, gmail.BuildQuery(""))
//	if err != nil {
//	    return err
//	}
//	for _, id := range ids {
//	    msg, err := client.GetMessage(ctx, id)
//	    if err != nil {
//	        return err
//	    }
//	    for _, ref := range gmail.Attachments(msg) {
//	        data, err := client.GetAttachment(ctx, ref.MessageID, ref.AttachmentID)
//	        ...
//	    }
//	}
package gmail
