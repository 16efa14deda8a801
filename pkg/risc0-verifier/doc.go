// Package risc0verifier verifies RISC Zero zkVM receipts of every released
// protocol version.
//
// A receipt proves that a program, identified by its image id (the Vk),
// ran to a successful halt and committed a journal. Receipts come in three
// shapes: a single segment, a composite chain of segments with optional
// assumption receipts, and a succinct receipt compressed by the recursion
// circuit. All of them are checked by the same call.
//
// # Quick Start
//
// Verifying a proof with the latest protocol version:
//
//	vk, err := risc0verifier.ParseVk("32e1a33f3988c3cdf127e709cc0323a258b28df750b7a2d5ddc4c5e37f007d99")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	proof, err := risc0verifier.DecodeProof(data, "auto")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := risc0verifier.VerifyDefaultVersion(vk, proof, journal); err != nil {
//		log.Fatal(err)
//	}
//
// Receipts produced by an older prover must be checked with the verifier of
// their version:
//
//	verifier := risc0verifier.V1_2Verifier()
//	err := verifier.Verify(vk, proof, journal)
//
// # Proof system
//
// Seals are opened by a reference kernel that checks the receipt structure,
// claim digests and control ids of every version. It does not implement
// the RISC Zero STARK and rejects seals made by the RISC Zero prover;
// receipts for it are produced by this module's own fixture prover.
//
// # Errors
//
// Every error returned by this package is a *VerifierError. Its code tells
// why a receipt was rejected:
//
//	if errors.Is(err, risc0verifier.ErrClaimMismatch) {
//		// valid proof, but of another program or journal
//	}
//
// # Concurrency
//
// Verifiers hold no mutable state and may be shared between goroutines.
// VerifyBatch checks many receipts concurrently.
package risc0verifier
