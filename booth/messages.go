package booth

// Every integer crosses the booth boundary as base-10 text and the nonce as lowercase hex.
// The json and form names are the ones voters already have in their hands.

type StartVoteRequest struct {
	Candidate string `json:"candidato" form:"candidato"`
}

// StartVoteResponse carries the whole signature request back to the voter.
// The booth keeps none of it.
type StartVoteResponse struct {
	Candidate string `json:"candidato" form:"candidato"`
	NonceHex  string `json:"nonce_hex" form:"nonce_hex"`
	M         string `json:"m" form:"m"`
	R         string `json:"r" form:"r"`
	SBlinded  string `json:"s_blinded" form:"s_blinded"`
}

type RevealVoteRequest StartVoteResponse

type RevealVoteResponse struct {
	Candidate string `json:"candidato" form:"candidato"`
	NonceHex  string `json:"nonce_hex" form:"nonce_hex"`
	M         string `json:"m" form:"m"`
	S         string `json:"s" form:"s"`
}

type FinalizeVoteRequest RevealVoteResponse

type FinalizeVoteResponse struct {
	Recorded bool `json:"registrado"`
	RevealVoteResponse
}
