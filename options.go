package otfgrade

import (
	"github.com/nsip/otf-grade/internal/util"
	"github.com/pkg/errors"
)

// Option configures a GradeService.
type Option func(*GradeService) error

//
// apply all supplied options to the service
// returns any error encountered while applying the options
//
func (s *GradeService) setOptions(options ...Option) error {
	for _, opt := range options {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}

//
// the name of this service instance, a short random
// name is generated if none is given
//
func Name(name string) Option {
	return func(s *GradeService) error {
		if name != "" {
			s.serviceName = name
			return nil
		}
		s.serviceName = util.GenerateName()
		return nil
	}
}

//
// the unique id of this service instance, generated
// if none is given
//
func ID(id string) Option {
	return func(s *GradeService) error {
		if id != "" {
			s.serviceID = id
			return nil
		}
		s.serviceID = util.GenerateID()
		return nil
	}
}

// Host is the address the service listens on.
func Host(hostName string) Option {
	return func(s *GradeService) error {
		if hostName == "" {
			return errors.New("host cannot be empty")
		}
		s.serviceHost = hostName
		return nil
	}
}

//
// the port to run the service on, 0 picks
// any free port
//
func Port(port int) Option {
	return func(s *GradeService) error {
		if port < 0 {
			return errors.Errorf("invalid port %d", port)
		}
		if port != 0 {
			s.servicePort = port
			return nil
		}
		p, err := util.AvailablePort()
		if err != nil {
			return err
		}
		s.servicePort = p
		return nil
	}
}

// Grading sets the weighting scheme used for every request.
func Grading(scheme Scheme) Option {
	return func(s *GradeService) error {
		if err := scheme.Validate(); err != nil {
			return err
		}
		s.scheme = scheme
		return nil
	}
}
