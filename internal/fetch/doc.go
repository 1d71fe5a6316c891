// Package fetch orchestrates one archive run for one year.
//
// The pipeline is strictly sequential: list all completed signatures, then
// for each record fetch its detail, extract signer emails, and download every
// referenced document, appending one ledger row per document as it is
// processed. Download and detail failures are recorded and skipped over;
// only listing failures and broken storage abort the run.
package fetch
