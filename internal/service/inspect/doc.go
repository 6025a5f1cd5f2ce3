// Package inspect renders the run journal for operators: which controller
// runs happened, and tick by tick what each run observed, decided and sent.
package inspect
