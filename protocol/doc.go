// Package protocol implements the line framing of the exchange protocol.
//
// Every line is terminated by a newline. The server writes Prompt before
// reading each command; every response, one line or many, is followed by the
// Sentinel line so a client can find the end of a response without a length
// prefix:
//
//	READY>
//	BALANCES ACC1234
//	OK ACC1234 balances: USD=100.00 EUR=0.00 GBP=0.00
//	END
package protocol
