package service

import "errors"

var (
	// ErrSubjectNotFound indicates the subject cannot be located.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrQuestionNotFound indicates the question does not belong to the subject.
	ErrQuestionNotFound = errors.New("question not found for subject")
	// ErrSubmissionNotFound indicates the submission cannot be located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionMismatch indicates a submission identifier that is unknown or bound to another subject.
	ErrSubmissionMismatch = errors.New("submission does not belong to subject")
	// ErrPolicyNotFound indicates the grading policy cannot be located.
	ErrPolicyNotFound = errors.New("grading policy not found")
	// ErrPolicyInUse indicates a policy that is still referenced by subjects.
	ErrPolicyInUse = errors.New("grading policy is used by subjects")
	// ErrEmptyContent indicates text that is blank once trimmed or sanitised.
	ErrEmptyContent = errors.New("content must not be empty")
)
