package backend

import dErrors "unibuild/pkg/domain-errors"

var errMissingUser = dErrors.New(dErrors.CodeUnavailable, "identity response carried no user")
